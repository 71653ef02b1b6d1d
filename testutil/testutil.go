// Package testutil holds helpers shared by package tests: a migrated sqlite
// database and fakes for the outbound services.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/markoai/marko-backend/auth"
	"github.com/markoai/marko-backend/models"
	"github.com/markoai/marko-backend/services"
)

// TestPassword is the password of every user created by CreateUser.
const TestPassword = "password123"

var dbCounter atomic.Int64

// NewDB opens a fresh in-memory sqlite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test_%d_%s?mode=memory&cache=shared&_foreign_keys=1",
		dbCounter.Add(1), strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts a user with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        username + "@marko.test",
		DisplayName:  strings.ToUpper(username[:1]) + username[1:],
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// GeneratorCall records one request made to a FakeGenerator.
type GeneratorCall struct {
	Method  string
	System  string
	History []services.Turn
	Prompt  string
}

// FakeGenerator answers with canned replies and records its calls.
type FakeGenerator struct {
	mu     sync.Mutex
	Reply  string
	Images []services.GeneratedImage
	Err    error
	Calls  []GeneratorCall
}

func (f *FakeGenerator) record(call GeneratorCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

// LastCall returns the most recent call, or the zero value.
func (f *FakeGenerator) LastCall() GeneratorCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return GeneratorCall{}
	}
	return f.Calls[len(f.Calls)-1]
}

func (f *FakeGenerator) Chat(_ context.Context, system string, history []services.Turn, message string) (string, error) {
	f.record(GeneratorCall{Method: "Chat", System: system, History: history, Prompt: message})
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

func (f *FakeGenerator) Generate(_ context.Context, system, prompt string, _ float32) (string, error) {
	f.record(GeneratorCall{Method: "Generate", System: system, Prompt: prompt})
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

func (f *FakeGenerator) GenerateImages(_ context.Context, prompt string, opts services.ImageOptions) ([]services.GeneratedImage, error) {
	f.record(GeneratorCall{Method: "GenerateImages", Prompt: prompt})
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Images) > 0 {
		return f.Images, nil
	}
	images := make([]services.GeneratedImage, opts.Count)
	for i := range images {
		images[i] = services.GeneratedImage{Data: []byte(fmt.Sprintf("image-%d", i)), MIMEType: "image/png"}
	}
	return images, nil
}

// FakeNotifier records notifications. Done receives one value per notification.
type FakeNotifier struct {
	mu        sync.Mutex
	Submitted []uint
	Moderated []uint
	Done      chan struct{}
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{Done: make(chan struct{}, 16)}
}

func (f *FakeNotifier) PostSubmitted(_ context.Context, post *models.BlogPost) error {
	f.mu.Lock()
	f.Submitted = append(f.Submitted, post.ID)
	f.mu.Unlock()
	f.Done <- struct{}{}
	return nil
}

func (f *FakeNotifier) PostModerated(_ context.Context, post *models.BlogPost, _ *models.User) error {
	f.mu.Lock()
	f.Moderated = append(f.Moderated, post.ID)
	f.mu.Unlock()
	f.Done <- struct{}{}
	return nil
}

func (f *FakeNotifier) SubmittedIDs() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.Submitted...)
}

func (f *FakeNotifier) ModeratedIDs() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.Moderated...)
}
