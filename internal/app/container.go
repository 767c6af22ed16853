package app

import (
	"context"
	"io"

	configapp "github.com/doeshing/pteroai-go/internal/application/config"
	"github.com/doeshing/pteroai-go/internal/application/decision"
	"github.com/doeshing/pteroai-go/internal/application/doctor"
	"github.com/doeshing/pteroai-go/internal/application/gate"
	"github.com/doeshing/pteroai-go/internal/application/validation"
	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/infrastructure/cache"
	"github.com/doeshing/pteroai-go/internal/infrastructure/config"
	contextcollector "github.com/doeshing/pteroai-go/internal/infrastructure/context"
	"github.com/doeshing/pteroai-go/internal/infrastructure/filestore"
	"github.com/doeshing/pteroai-go/internal/infrastructure/history"
	"github.com/doeshing/pteroai-go/internal/infrastructure/knowledge"
	"github.com/doeshing/pteroai-go/internal/infrastructure/metrics"
	"github.com/doeshing/pteroai-go/internal/infrastructure/oracle"
	"github.com/doeshing/pteroai-go/internal/infrastructure/security"
	"github.com/doeshing/pteroai-go/internal/pkg/logger"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.ZapLogger
	Metrics        *metrics.Prometheus
	Cache          *cache.FileCache
	Guardrail      *security.Guardrail
	Knowledge      *knowledge.Store
	Validator      *validation.Engine
	Decisions      *decision.Engine
	Gate           *gate.Gate
	Collector      *contextcollector.TreeCollector
	HistoryStore   ports.HistoryRepository
	DoctorService  *doctor.Service
	// OracleErr is set when the configured oracle could not be built and the
	// offline oracle stands in for it.
	OracleErr error
}

// Options tunes BuildContainer.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	log, err := logger.New(opts.Verbose)
	if err != nil {
		return nil, err
	}

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	instruments := metrics.New()
	contextCache := cache.NewFileCache(cfg.CachePath, cache.WithLogger(log))

	guardrail, err := security.NewGuardrail(cfg.RulesFile)
	if err != nil {
		log.Warn("guardrail rules unusable, using built-in patterns", map[string]interface{}{
			"path":  cfg.RulesFile,
			"error": err.Error(),
		})
		guardrail = security.DefaultGuardrail()
	}

	factory := oracle.NewFactory(log, instruments)
	mainOracle, oracleErr := factory.ForRole(cfg, ports.OracleMain)
	validatorOracle, _ := factory.ForRole(cfg, ports.OracleValidator)
	if oracleErr != nil {
		log.Warn("oracle unavailable, decisions will use defaults", map[string]interface{}{
			"provider": cfg.GetOracleProvider(),
			"error":    oracleErr.Error(),
		})
	}

	files := filestore.NewLocal()
	extractor := knowledge.NewExtractor(knowledge.ExtractorDeps{
		Files:     files,
		Oracle:    mainOracle,
		Logger:    log,
		Metrics:   instruments,
		LineLimit: cfg.GetPromptLineLimit(),
	})
	knowledgeStore := knowledge.NewStore(extractor)

	validator := validation.NewEngine(validation.Deps{
		Analyzer:      security.NewAnalyzer(guardrail),
		Oracle:        validatorOracle,
		Logger:        log,
		Metrics:       instruments,
		DiffLineLimit: cfg.GetDiffLineLimit(),
	})

	historyStore := history.Open(cfg.GetHistoryPath(), log)

	decisions := decision.NewEngine(decision.Deps{
		Config:    cfg,
		Oracle:    mainOracle,
		Cache:     contextCache,
		Knowledge: knowledgeStore,
		Validator: validator,
		Files:     files,
		History:   historyStore,
		Logger:    log,
		Metrics:   instruments,
	})

	collector := contextcollector.NewTreeCollector(contextCache, log)

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Collector:      collector,
		History:        historyStore,
		LoadRules:      countRules,
		SyntaxProbe:    security.CheckSyntax,
		KeyEnvVar:      oracle.KeyEnvVar,
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		Metrics:        instruments,
		Cache:          contextCache,
		Guardrail:      guardrail,
		Knowledge:      knowledgeStore,
		Validator:      validator,
		Decisions:      decisions,
		Gate:           gate.New(cfg, log),
		Collector:      collector,
		HistoryStore:   historyStore,
		DoctorService:  doctorService,
		OracleErr:      oracleErr,
	}, nil
}

// SaveConfig validates cfg and writes it through the loader. The running
// container keeps its old snapshot; changes apply on the next start.
func (c *Container) SaveConfig(ctx context.Context, cfg domain.Config) error {
	if err := configapp.Validate(cfg); err != nil {
		return err
	}
	return c.ConfigProvider.Save(ctx, cfg)
}

// Close releases the history database and flushes the logger.
func (c *Container) Close() error {
	var firstErr error
	if closer, ok := c.HistoryStore.(io.Closer); ok {
		firstErr = closer.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	return firstErr
}

func countRules(path string) (int, error) {
	g, err := security.NewGuardrail(path)
	if err != nil {
		return 0, err
	}
	return len(g.Patterns()), nil
}
