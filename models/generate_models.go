package models

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
)

// GeneratedQueryDir is where GenerateModels writes the typed query helpers.
const GeneratedQueryDir = "./generated"

// GenerateModels migrates the schema, reports column drift and writes typed
// gorm/gen query helpers for every model to GeneratedQueryDir.
// Run with GENERATE_MODELS=true.
func GenerateModels(db *gorm.DB, out io.Writer) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	db = db.Session(&gorm.Session{SkipDefaultTransaction: true})

	if err := Migrate(db); err != nil {
		return err
	}
	log.Info().Msg("Schema migrated")

	if _, err := WriteColumnReport(db, out); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           GeneratedQueryDir,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()

	log.Info().Str("dir", GeneratedQueryDir).Msg("Query helpers generated")
	return nil
}

// TableDrift lists the columns of a table that no model field maps to,
// typically left behind by a renamed or removed field.
type TableDrift struct {
	Table   string
	Missing bool // table not created yet
	Extra   []string
}

// ColumnDrift compares every model against the live schema. It does not migrate.
func ColumnDrift(db *gorm.DB) ([]TableDrift, error) {
	report := make([]TableDrift, 0, len(All()))
	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}

		drift := TableDrift{Table: stmt.Schema.Table}
		if !db.Migrator().HasTable(drift.Table) {
			drift.Missing = true
			report = append(report, drift)
			continue
		}

		columns, err := db.Migrator().ColumnTypes(drift.Table)
		if err != nil {
			return nil, fmt.Errorf("columns of %s: %w", drift.Table, err)
		}
		names := make([]string, 0, len(columns))
		for _, c := range columns {
			names = append(names, c.Name())
		}
		drift.Extra = findColumnMismatches(names, stmt.Schema.DBNames)
		report = append(report, drift)
	}
	return report, nil
}

// WriteColumnReport prints ColumnDrift to out and returns the number of
// unmapped columns. Run with GENERATE_COLUMN_REPORT=true.
func WriteColumnReport(db *gorm.DB, out io.Writer) (int, error) {
	report, err := ColumnDrift(db)
	if err != nil {
		return 0, err
	}

	total := 0
	fmt.Fprintln(out, "column drift report")
	for _, t := range report {
		switch {
		case t.Missing:
			fmt.Fprintf(out, "  %s: table missing\n", t.Table)
		case len(t.Extra) == 0:
			fmt.Fprintf(out, "  %s: ok\n", t.Table)
		default:
			fmt.Fprintf(out, "  %s: %s\n", t.Table, strings.Join(t.Extra, ", "))
			total += len(t.Extra)
		}
	}
	fmt.Fprintf(out, "%d unmapped column(s)\n", total)
	return total, nil
}

// findColumnMismatches returns the dbColumns with no matching model field.
func findColumnMismatches(dbColumns, modelFields []string) []string {
	known := make(map[string]struct{}, len(modelFields))
	for _, f := range modelFields {
		known[strings.ToLower(f)] = struct{}{}
	}

	var extra []string
	for _, col := range dbColumns {
		if _, ok := known[strings.ToLower(col)]; !ok {
			extra = append(extra, col)
		}
	}
	return extra
}
