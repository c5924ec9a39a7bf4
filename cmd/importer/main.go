package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"versehub/database"
	"versehub/internal/config"
	"versehub/internal/reader/models"
	"versehub/internal/reader/repository"
)

const importBatchSize = 500

// CorpusFile is the on-disk corpus format: one corpus key plus the full
// verse list, already in (section, chapter, verse) order.
type CorpusFile struct {
	Corpus string               `json:"corpus"`
	Verses []models.VerseRecord `json:"verses"`
}

func main() {
	log.Println("Starting corpus import...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Explicit file arguments win; otherwise import every corpus file
	// under the configured data path.
	files := os.Args[1:]
	if len(files) == 0 {
		files, err = filepath.Glob(filepath.Join(cfg.CorpusDataPath, "*.json"))
		if err != nil || len(files) == 0 {
			log.Fatalf("no corpus files given and none found under %s", cfg.CorpusDataPath)
		}
	}

	db, err := database.Connect(cfg, slog.Default())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✓ Successfully connected to database")

	verses := repository.NewVerseRepository(db)

	// One batch per limiter token keeps a bulk load from saturating a
	// managed database instance.
	limiter := rate.NewLimiter(rate.Limit(cfg.ImportRate), 1)

	ctx := context.Background()
	for _, path := range files {
		if err := importFile(ctx, verses, limiter, path); err != nil {
			log.Fatalf("Failed to import %s: %v", path, err)
		}
	}

	log.Println("✓ Corpus import completed successfully!")
}

func importFile(ctx context.Context, verses repository.VerseRepository, limiter *rate.Limiter, path string) error {
	log.Printf("Reading corpus from %s...", path)

	data, err := readCorpusFile(path)
	if err != nil {
		return err
	}
	if data.Corpus == "" {
		return fmt.Errorf("missing corpus key in %s", path)
	}
	log.Printf("✓ Loaded %d verses for corpus %q", len(data.Verses), data.Corpus)

	if err := prepare(data); err != nil {
		return err
	}

	imported := 0
	for start := 0; start < len(data.Verses); start += importBatchSize {
		end := start + importBatchSize
		if end > len(data.Verses) {
			end = len(data.Verses)
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := verses.CreateBatch(ctx, data.Verses[start:end]); err != nil {
			return fmt.Errorf("batch at offset %d: %w", start, err)
		}
		imported += end - start
	}

	log.Printf("✓ Successfully imported %d verses into %q", imported, data.Corpus)
	return nil
}

// prepare assigns record IDs and verifies the ordering tuple is strictly
// increasing — a corpus that violates its own total order would corrupt
// every index computed over it.
func prepare(data *CorpusFile) error {
	var prev *models.VerseRecord
	for i := range data.Verses {
		v := &data.Verses[i]
		v.Corpus = data.Corpus
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		v.Normalize()
		if prev != nil && !prev.Before(v) {
			return fmt.Errorf("verses out of order at position %d (%s after %s)",
				i, v.Reference, prev.Reference)
		}
		prev = v
	}
	return nil
}

func readCorpusFile(filename string) (*CorpusFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data CorpusFile
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return &data, nil
}
