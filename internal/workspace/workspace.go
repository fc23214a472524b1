// Package workspace wires the adapters and application services for one
// package root. The CLI and the MCP server both run on top of it.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"ipmgraph/internal/adapters/detect"
	"ipmgraph/internal/adapters/filesystem"
	"ipmgraph/internal/adapters/profiledoc"
	"ipmgraph/internal/adapters/rdf"
	"ipmgraph/internal/adapters/sqlite"
	"ipmgraph/internal/application/assign"
	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/application/objects"
	"ipmgraph/internal/config"
	"ipmgraph/internal/domain"
)

// Workspace holds every collaborator needed to work on a package root
type Workspace struct {
	Config   *config.Config
	RootPath string
	Profile  *domain.Profile
	Store    *sqlite.Store
	Detector *detect.Detector
	Scanner  *filesystem.Scanner
	Engine   *assign.Engine
	Objects  *objects.Store
	Logger   *slog.Logger
}

// Open resolves the configured profile and opens the store of rootPath
func Open(rootPath string, cfg *config.Config, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, &domain.IOError{Op: "resolve", Path: rootPath, Err: err}
	}

	profile, err := LoadProfile(cfg)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = sqlite.DatabasePath(abs)
	}
	store, err := sqlite.Open(dbPath, abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	algs, _ := cfg.Algorithms()
	detector := detect.New(
		detect.WithHeaderSize(cfg.Scan.HeaderSize),
		detect.WithLogger(logger),
	)

	w := &Workspace{
		Config:   cfg,
		RootPath: abs,
		Profile:  profile,
		Store:    store,
		Detector: detector,
		Scanner: filesystem.NewScanner(
			filesystem.WithAlgorithms(algs...),
			filesystem.WithDetector(detector),
			filesystem.WithIgnorePatterns(cfg.Scan.Ignore...),
			filesystem.WithWorkers(cfg.Scan.Workers),
			filesystem.WithLogger(logger),
		),
		Engine: assign.NewEngine(profile,
			assign.WithSearchLimit(cfg.Assign.SearchLimit),
			assign.WithLogger(logger),
		),
		Objects: objects.NewStore(profile, store,
			objects.WithDetector(detector),
			objects.WithAlgorithms(algs...),
			objects.WithLogger(logger),
		),
		Logger: logger,
	}

	logger.Debug("Opened workspace",
		slog.String("root", abs),
		slog.String("profile", profile.ID()),
		slog.String("store", dbPath))
	return w, nil
}

// LoadProfile resolves the configured profile and applies the namespace
// override
func LoadProfile(cfg *config.Config) (*domain.Profile, error) {
	profile, err := profiledoc.Resolve(cfg.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if cfg.Namespace != "" && cfg.Namespace != profile.Namespace() {
		if profile, err = profiledoc.WithNamespace(profile, cfg.Namespace); err != nil {
			return nil, fmt.Errorf("invalid namespace: %w", err)
		}
	}
	return profile, nil
}

// Close releases the detector and the store
func (w *Workspace) Close() error {
	derr := w.Detector.Close()
	if err := w.Store.Close(); err != nil {
		return err
	}
	return derr
}

// Typed scans the root and assigns types. A failed assignment is returned
// as a result with violations, not as an error.
func (w *Workspace) Typed(ctx context.Context) (*commands.ScanResult, *commands.AssignResult, error) {
	scan, err := commands.NewScanCommand(w.Scanner, w.Store, w.Profile, w.RootPath).Execute(ctx)
	if err != nil {
		return nil, nil, err
	}
	assigned, err := commands.NewAssignCommand(w.Engine, scan.Root).Execute(ctx)
	if err != nil {
		return nil, nil, err
	}
	return scan, assigned, nil
}

// Encoder builds the RDF encoder for format ("" means the configured one).
// The profile namespace gets the "obj" prefix.
func (w *Workspace) Encoder(format string, compress bool) (*rdf.Encoder, error) {
	if format == "" {
		format = w.Config.Export.Format
	}
	f, err := rdf.ParseFormat(format)
	if err != nil {
		return nil, &domain.ValidationError{Field: "format", Message: err.Error()}
	}
	return rdf.NewEncoder(f,
		rdf.WithCompression(compress),
		rdf.WithPrefix("obj", w.Profile.Namespace()),
	), nil
}

// Sync rescans the root, lets edit adjust the scanned tree, assigns types
// and reconciles the store. edit may be nil.
func (w *Workspace) Sync(ctx context.Context, edit func(root *domain.Node) error) (*commands.SyncResult, error) {
	scan, err := commands.NewScanCommand(w.Scanner, w.Store, w.Profile, w.RootPath).Execute(ctx)
	if err != nil {
		return nil, err
	}
	if edit != nil {
		if err := edit(scan.Root); err != nil {
			return nil, err
		}
	}

	assigned, err := commands.NewAssignCommand(w.Engine, scan.Root).Execute(ctx)
	if err != nil {
		return nil, err
	}
	if !assigned.Assigned {
		return nil, &AssignmentError{Result: assigned}
	}

	return commands.NewSyncCommand(w.Objects, w.Store, w.Store, scan.Root).Execute(ctx)
}

// Ignore returns the matcher the scanner uses for this root
func (w *Workspace) Ignore() (*filesystem.Matcher, error) {
	return filesystem.LoadIgnore(w.RootPath, w.Config.Scan.Ignore...)
}

// AssignmentError reports that no valid type assignment exists
type AssignmentError struct {
	Result *commands.AssignResult
}

func (e *AssignmentError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Result.Message)
	for _, v := range e.Result.Violations {
		sb.WriteString("\n  ")
		sb.WriteString(v.String())
	}
	return sb.String()
}

func (e *AssignmentError) Is(target error) bool {
	return target == domain.ErrValidation
}
