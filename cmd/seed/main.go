package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"halidom/internal/config"
	"halidom/internal/domain/models"
	"halidom/internal/repository/postgres"
	servicePost "halidom/internal/service/post"
)

// fixtures is the on-disk shape of the seed file.
type fixtures struct {
	KeyPoints []struct {
		Kind         string            `yaml:"kind"`
		Descriptions map[string]string `yaml:"descriptions"`
	} `yaml:"key_points"`

	UnitNames []struct {
		UnitID string            `yaml:"unit_id"`
		Names  map[string]string `yaml:"names"`
	} `yaml:"unit_names"`

	Analyses []struct {
		Language string `yaml:"language"`
		Title    string `yaml:"title"`
		UnitID   string `yaml:"unit_id"`
		UnitType string `yaml:"unit_type"`
		Summary  string `yaml:"summary"`
	} `yaml:"analyses"`

	Quests []struct {
		Language    string `yaml:"language"`
		Title       string `yaml:"title"`
		QuestID     string `yaml:"quest_id"`
		Boss        string `yaml:"boss"`
		Positioning string `yaml:"positioning"`
		TeamNotes   string `yaml:"team_notes"`
	} `yaml:"quests"`

	Articles []struct {
		Language string `yaml:"language"`
		Title    string `yaml:"title"`
		Sections []struct {
			Heading string `yaml:"heading"`
			Body    string `yaml:"body"`
		} `yaml:"sections"`
		Tags []string `yaml:"tags"`
	} `yaml:"articles"`
}

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed fixtures")
	fixturesPath := flag.String("fixtures", "cmd/seed/fixtures.yaml", "Path to the YAML fixtures file")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Load fixtures
	raw, err := os.ReadFile(*fixturesPath)
	if err != nil {
		log.Fatalf("Failed to read fixtures file: %v", err)
	}
	var fx fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		log.Fatalf("Failed to parse fixtures file: %v", err)
	}

	// Create repositories and services
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	sequenceAllocator := postgres.NewSequenceAllocator(repoConfig)
	postRepo := postgres.NewPostRepository(repoConfig)
	keyPointRepo := postgres.NewKeyPointRepository(repoConfig)
	unitNameRepo := postgres.NewUnitNameRepository(repoConfig)

	analysisService := servicePost.NewAnalysisService(sequenceAllocator, postRepo, logger)
	questService := servicePost.NewQuestService(sequenceAllocator, postRepo, logger)
	miscService := servicePost.NewMiscService(sequenceAllocator, postRepo, logger)

	// Seed key points
	log.Printf("📝 Seeding %d key points...", len(fx.KeyPoints))
	now := time.Now().UTC()
	for _, kp := range fx.KeyPoints {
		entry := &models.KeyPoint{
			ID:           uuid.New(),
			Kind:         models.KeyPointKind(kp.Kind),
			Descriptions: kp.Descriptions,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if !entry.Kind.Valid() {
			log.Fatalf("Fixture key point has unknown kind %q", kp.Kind)
		}
		if err := keyPointRepo.Insert(ctx, entry); err != nil {
			log.Fatalf("Failed to insert key point: %v", err)
		}
	}

	// Seed unit names
	log.Printf("📝 Seeding %d unit names...", len(fx.UnitNames))
	for _, un := range fx.UnitNames {
		ref := &models.UnitNameRef{
			ID:        uuid.New(),
			UnitID:    un.UnitID,
			Names:     un.Names,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := unitNameRepo.Insert(ctx, ref); err != nil {
			log.Fatalf("Failed to insert unit name: %v", err)
		}
	}

	// Seed posts through the services so sequence ids are allocated the same
	// way they are in production.
	log.Printf("📝 Seeding %d analyses...", len(fx.Analyses))
	for _, a := range fx.Analyses {
		_, err := analysisService.Publish(ctx, &servicePost.PublishAnalysisRequest{
			Language: a.Language,
			Title:    a.Title,
			UnitID:   a.UnitID,
			UnitType: models.UnitType(a.UnitType),
			Summary:  a.Summary,
		})
		if err != nil {
			log.Fatalf("Failed to seed analysis %q: %v", a.Title, err)
		}
	}

	log.Printf("📝 Seeding %d quests...", len(fx.Quests))
	for _, q := range fx.Quests {
		_, err := questService.Publish(ctx, &servicePost.PublishQuestRequest{
			Language: q.Language,
			Title:    q.Title,
			Content: models.QuestContent{
				QuestID:     q.QuestID,
				Boss:        q.Boss,
				Positioning: q.Positioning,
				TeamNotes:   q.TeamNotes,
			},
		})
		if err != nil {
			log.Fatalf("Failed to seed quest %q: %v", q.Title, err)
		}
	}

	log.Printf("📝 Seeding %d articles...", len(fx.Articles))
	for _, m := range fx.Articles {
		sections := make([]models.MiscSection, 0, len(m.Sections))
		for _, s := range m.Sections {
			sections = append(sections, models.MiscSection{Heading: s.Heading, Body: s.Body})
		}
		_, err := miscService.Publish(ctx, &servicePost.PublishMiscRequest{
			Language: m.Language,
			Title:    m.Title,
			Content:  models.MiscContent{Sections: sections, Tags: m.Tags},
		})
		if err != nil {
			log.Fatalf("Failed to seed article %q: %v", m.Title, err)
		}
	}

	log.Println("✅ Seeding complete")
}

// dropAllTables removes every table this service owns.
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	names := []string{
		tables.SequenceCounters,
		tables.KeyPoints,
		tables.UnitNames,
		tables.UserSettings,
	}
	for _, collection := range models.PostCollections {
		names = append(names, tables.Post(collection))
	}

	for _, name := range names {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", name)); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	return nil
}
