package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Collector      ports.SystemCollector
	History        ports.HistoryRepository
	// LoadRules returns how many danger patterns the rules file yields.
	LoadRules func(path string) (int, error)
	// SyntaxProbe parses a known-good snippet for the given file name.
	SyntaxProbe func(path, code string) error
	// KeyEnvVar names the credential variable a provider reads; empty means none needed.
	KeyEnvVar func(provider, authEnvVar string) string
}

var syntaxProbes = []struct{ path, code string }{
	{"probe.py", "def probe():\n    return 1\n"},
	{"probe.sh", "echo probe\n"},
	{"probe.go", "package probe\n"},
	{"probe.yaml", "probe: true\n"},
	{"probe.toml", "probe = true\n"},
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded %s", s.ConfigProvider.Path())))

	checks = append(checks, dirCheck("Cache directory", cfg.CachePath))
	checks = append(checks, dirCheck("Backup directory", cfg.BackupPath))

	if s.Collector != nil {
		if snapshot, err := s.Collector.Collect(ctx, cfg); err != nil {
			checks = append(checks, warn("Install root", err.Error()))
		} else if !snapshot.Installed {
			checks = append(checks, warn("Install root", fmt.Sprintf("no artisan file under %s", cfg.PteroPath)))
		} else {
			files, dirs := snapshot.CountNodes()
			checks = append(checks, ok("Install root", fmt.Sprintf("%s (%d files, %d dirs, services: %d)", cfg.PteroPath, files, dirs, len(snapshot.Services))))
		}
	}

	if s.LoadRules != nil {
		if n, err := s.LoadRules(cfg.RulesFile); err != nil {
			checks = append(checks, fail("Guardrail", err.Error()))
		} else {
			checks = append(checks, ok("Guardrail", fmt.Sprintf("%d danger patterns", n)))
		}
	}

	if s.SyntaxProbe != nil {
		checks = append(checks, s.parserCheck())
	}

	checks = append(checks, s.oracleCheck(cfg))

	if s.History != nil {
		if _, err := s.History.List(ctx, 1); err != nil {
			checks = append(checks, warn("History", err.Error()))
		} else {
			checks = append(checks, ok("History", cfg.GetHistoryPath()))
		}
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) parserCheck() domain.HealthCheck {
	for _, probe := range syntaxProbes {
		if err := s.SyntaxProbe(probe.path, probe.code); err != nil {
			return fail("Syntax parsers", fmt.Sprintf("%s: %v", probe.path, err))
		}
	}
	return ok("Syntax parsers", fmt.Sprintf("%d languages probed", len(syntaxProbes)))
}

func (s *Service) oracleCheck(cfg domain.Config) domain.HealthCheck {
	provider := cfg.GetOracleProvider()
	if provider == domain.OracleProviderNone {
		return warn("Oracle", "provider 'none': every oracle stage will degrade")
	}
	if s.KeyEnvVar == nil {
		return ok("Oracle", provider)
	}
	name := s.KeyEnvVar(provider, cfg.Oracle.AuthEnvVar)
	if name == "" {
		return ok("Oracle", fmt.Sprintf("%s (no key required)", provider))
	}
	if os.Getenv(name) == "" {
		return warn("Oracle", fmt.Sprintf("%s missing for provider %s", name, provider))
	}
	return ok("Oracle", fmt.Sprintf("%s via %s", provider, name))
}

func dirCheck(name, dir string) domain.HealthCheck {
	info, err := os.Stat(dir)
	if err != nil {
		return fail(name, err.Error())
	}
	if !info.IsDir() {
		return fail(name, dir+" is not a directory")
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return warn(name, fmt.Sprintf("%s not writable: %v", dir, err))
	}
	probe.Close()
	os.Remove(probe.Name())
	return ok(name, dir)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
