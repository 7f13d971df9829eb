// Command docqa answers questions about a private corpus of documents and
// YouTube transcripts.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/blob"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/milvus"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/connectors/youtube"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// homeEnv overrides the ~/.docqa base directory.
const homeEnv = "DOCQA_HOME"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	home, err := baseDir()
	if err != nil {
		return err
	}

	rt, err := assemble(ctx, home)
	if err != nil {
		return err
	}
	defer rt.close()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Corpus:          rt.app.Corpus,
		Ingest:          rt.app.Ingest,
		Index:           rt.app.Index,
		Settings:        rt.app.Settings,
		NewConversation: func() driving.ConversationService { return rt.app.NewSession() },
		WatchPrompts:    rt.prompts.Watch,
	})

	return cli.Execute(ctx)
}

// runtime holds the assembled application and the resources it owns.
type runtime struct {
	app     *services.App
	prompts *file.PromptStore
	closers []func() error
}

// close releases resources in reverse order of acquisition.
func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}
}

// assemble opens every adapter under home and wires them into an App.
func assemble(ctx context.Context, home string) (_ *runtime, err error) {
	rt := &runtime{}
	defer func() {
		if err != nil {
			rt.close()
		}
	}()

	dataDir := filepath.Join(home, "data")

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	validator := ai.NewConfigValidator()
	settings, err := services.NewSettingsService(configStore, validator).Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening corpus registry: %w", err)
	}
	rt.closers = append(rt.closers, store.Close)

	blobs, err := blob.NewStore(dataDir)
	if err != nil {
		return nil, err
	}

	index, err := openVectorIndex(ctx, settings.Vector, dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening vector index: %w", err)
	}

	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunking)
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("building chunking pipeline: %w", err)
	}

	rt.prompts, err = file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		index.Close()
		return nil, err
	}

	providers := ai.Init(*settings)

	rt.app = services.NewApp(services.AppConfig{
		Settings:    *settings,
		ConfigStore: configStore,
		AIValidator: validator,
		CorpusStore: store.CorpusStore(),
		Blobs:       blobs,
		Normalisers: normalisers.NewDefaultRegistry(),
		Captions:    youtube.NewClient(),
		Pipeline:    pipeline,
		Embedder:    providers.EmbeddingService,
		LLM:         providers.LLMService,
		Index:       index,
		Prompts:     rt.prompts,
	})
	rt.closers = append(rt.closers, rt.app.Close)
	return rt, nil
}

// baseDir returns $DOCQA_HOME or ~/.docqa.
func baseDir() (string, error) {
	if dir := os.Getenv(homeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, file.DefaultDirName), nil
}

func openVectorIndex(ctx context.Context, cfg domain.VectorSettings, dataDir string) (driven.VectorIndex, error) {
	if cfg.Backend == domain.VectorBackendMilvus {
		return milvus.NewIndex(ctx, milvus.Config{
			Address:  cfg.MilvusAddress,
			Username: cfg.MilvusUsername,
			Password: cfg.MilvusPassword,
			Database: cfg.MilvusDatabase,
		}, dataDir)
	}
	return sqlite.NewVectorIndex(dataDir)
}
