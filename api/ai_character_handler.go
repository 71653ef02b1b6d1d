package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/errs"
	"github.com/markoai/marko-backend/models"
	"github.com/markoai/marko-backend/services"
)

const (
	maxCharacterName    = 80
	maxCharacterPersona = 8000
)

type aiCharacterHandler struct {
	responder         Responder
	logger            zerolog.Logger
	generator         services.Generator
	characterRepo     *database.AICharacterRepo
	characterChatRepo *database.CharacterChatRepo
}

func newAICharacterHandler(base handlerBase, generator services.Generator, characterRepo *database.AICharacterRepo,
	characterChatRepo *database.CharacterChatRepo) aiCharacterHandler {
	responder, logger := base.build("aiCharacterHandler")
	return aiCharacterHandler{
		responder:         responder,
		logger:            logger,
		generator:         generator,
		characterRepo:     characterRepo,
		characterChatRepo: characterChatRepo,
	}
}

// findCharacter resolves {id} as a numeric ID or a slug. Inactive characters
// are only visible to signed-in users.
func (h aiCharacterHandler) findCharacter(r *http.Request) (*models.AICharacter, error) {
	idOrSlug := chi.URLParam(r, "id")

	var character *models.AICharacter
	var err error
	if id, parseErr := strconv.ParseUint(idOrSlug, 10, 32); parseErr == nil {
		character, err = h.characterRepo.FindByID(r.Context(), uint(id))
	} else {
		character, err = h.characterRepo.FindBySlug(r.Context(), idOrSlug)
	}
	if err != nil {
		return nil, wrapDatabaseError("find ai character", "ai_character", err)
	}
	if !character.IsActive && !isStaff(ctxGetUser(r.Context())) {
		return nil, errs.NewNotFoundError("ai_character")
	}
	return character, nil
}

func (h aiCharacterHandler) getCharacters() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := r.URL.Query().Get("all") == "true" && isStaff(ctxGetUser(r.Context()))

		characters, err := h.characterRepo.FindAll(r.Context(), all)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find ai characters", "ai_characters", err))
			return
		}
		if characters == nil {
			characters = []*models.AICharacter{}
		}
		h.responder.WriteJSON(w, characters)
	}
}

func (h aiCharacterHandler) getCharacter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		character, err := h.findCharacter(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, character)
	}
}

// parseTraits accepts a JSON object, or null to clear the traits.
func parseTraits(raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var object map[string]any
	if err := json.Unmarshal(trimmed, &object); err != nil {
		return nil, errs.NewInvalidFieldError("traits", "must be a JSON object")
	}
	return datatypes.JSON(trimmed), nil
}

// apply copies the fields present in req onto character
func (req AICharacterRequest) apply(character *models.AICharacter) error {
	if req.Name != nil {
		name, err := requireText("name", *req.Name, maxCharacterName)
		if err != nil {
			return err
		}
		character.Name = name
	}
	if req.Persona != nil {
		persona, err := requireText("persona", *req.Persona, maxCharacterPersona)
		if err != nil {
			return err
		}
		character.Persona = persona
	}
	if req.Slug != nil {
		character.Slug = services.Slugify(*req.Slug)
	}
	if req.Tagline != nil {
		character.Tagline = strings.TrimSpace(*req.Tagline)
	}
	if req.Description != nil {
		character.Description = strings.TrimSpace(*req.Description)
	}
	if req.Greeting != nil {
		character.Greeting = strings.TrimSpace(*req.Greeting)
	}
	if req.AvatarURL != nil {
		character.AvatarURL = trimmedOrNil(req.AvatarURL)
	}
	if req.Traits != nil {
		traits, err := parseTraits(req.Traits)
		if err != nil {
			return err
		}
		character.Traits = traits
	}
	if req.IsActive != nil {
		character.IsActive = *req.IsActive
	}
	if character.Slug == "" {
		character.Slug = services.Slugify(character.Name)
	}
	if character.Slug == "" {
		character.Slug = "character"
	}
	return nil
}

func (h aiCharacterHandler) createCharacter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AICharacterRequest
		if err := decodeJSON(r, &req, "ai character"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Name == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}
		if req.Persona == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("persona"))
			return
		}

		character := &models.AICharacter{IsActive: true}
		if err := req.apply(character); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.characterRepo.Add(r.Context(), character); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create ai character", "ai_character", err))
			return
		}

		h.logger.Info().Uint("characterId", character.ID).Str("slug", character.Slug).Msg("AI character created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, character)
	}
}

func (h aiCharacterHandler) updateCharacter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req AICharacterRequest
		if err := decodeJSON(r, &req, "ai character"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		character, err := h.characterRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find ai character", "ai_character", err))
			return
		}
		if err := req.apply(character); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.characterRepo.Update(r.Context(), character); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update ai character", "ai_character", err))
			return
		}
		h.responder.WriteJSON(w, character)
	}
}

func (h aiCharacterHandler) deleteCharacter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.characterRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete ai character", "ai_character", err))
			return
		}
		h.logger.Info().Uint("characterId", id).Msg("AI character deleted")
		h.responder.WriteJSON(w, MessageResponse{Message: "ai character deleted"})
	}
}

// chat sends one message to a character. The first turn of a conversation is
// the character's greeting, stored before the user's message.
func (h aiCharacterHandler) chat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.generator == nil {
			h.responder.WriteError(w, errs.NewServiceNotConfiguredError(aiService))
			return
		}

		character, err := h.findCharacter(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req ChatRequest
		if err := decodeJSON(r, &req, "chat"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		message, err := requireText("message", req.Message, maxChatMessage)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		convID, err := conversationID(req.ConversationID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		previous, err := h.characterChatRepo.FindConversation(r.Context(), character.ID, convID, historyTurns)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find conversation", "character_chats", err))
			return
		}

		var turns []*models.CharacterChat
		history := make([]services.Turn, 0, len(previous)+1)
		for _, c := range previous {
			history = append(history, services.Turn{Role: c.Role, Text: c.Content})
		}
		var greeting string
		if len(previous) == 0 && character.Greeting != "" {
			greeting = character.Greeting
			history = append(history, services.Turn{Role: models.RoleModel, Text: greeting})
			turns = append(turns, &models.CharacterChat{CharacterID: character.ID, ConversationID: convID, Role: models.RoleModel, Content: greeting})
		}

		system, err := services.CharacterInstruction(character.Name, character.Tagline, character.Persona)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to build prompt", err))
			return
		}

		reply, err := h.generator.Chat(r.Context(), system, history, message)
		if err != nil {
			h.responder.WriteError(w, upstreamError(err))
			return
		}

		answer := &models.CharacterChat{CharacterID: character.ID, ConversationID: convID, Role: models.RoleModel, Content: reply}
		turns = append(turns,
			&models.CharacterChat{CharacterID: character.ID, ConversationID: convID, Role: models.RoleUser, Content: message},
			answer,
		)
		if err := h.characterChatRepo.Add(r.Context(), turns...); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("save", "character_chats", err))
			return
		}

		h.responder.WriteJSON(w, ChatResponse{
			ConversationID: convID,
			Reply:          reply,
			Greeting:       greeting,
			CreatedAt:      answer.CreatedAt,
		})
	}
}

func (h aiCharacterHandler) getConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		character, err := h.findCharacter(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		convID, err := conversationID(chi.URLParam(r, "conversationId"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		turns, err := h.characterChatRepo.FindConversation(r.Context(), character.ID, convID, maxConversationRead)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find conversation", "character_chats", err))
			return
		}
		if len(turns) == 0 {
			h.responder.WriteError(w, errs.NewNotFoundError("conversation"))
			return
		}
		h.responder.WriteJSON(w, ConversationResponse{ConversationID: convID, Messages: turns})
	}
}
