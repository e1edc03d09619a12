package migrate

import (
	"github.com/sirupsen/logrus"

	"beg-migrate/internal/config"
	"beg-migrate/internal/legacy"
	"beg-migrate/internal/store"
)

// Chunk sizes for bulk inserts. One chunk is one statement inside one
// transaction: bounded memory, bounded loss on a mid-run crash.
const (
	insertChunkSize = 3000
	memberChunkSize = 1000
)

// ActivityRate is a user's assigned rate class for one activity type,
// carried over from the legacy LinkACC table.
type ActivityRate struct {
	ActivityID int64  `json:"activityId"`
	Class      string `json:"class"`
}

// TypeMapping is the output of the project types stage, required by the
// projects stage. It is the one hard cross-stage precondition in the run.
type TypeMapping struct {
	Remap           *legacy.TypeMapping
	LegacyIDToLabel map[int64]string
	NewLabelToID    map[string]int64
}

// Run carries everything a stage needs, including the identifier sets
// accumulated by earlier stages. Stages receive it explicitly; there is no
// process-global state, so stage functions stay independently testable.
type Run struct {
	Store     *store.Store
	Cfg       config.MigrationConfig
	Snapshots *legacy.SnapshotReader
	Log       *logrus.Entry

	// Identifier sets: ids known to exist in the target store after the
	// owning stage completes. Later stages validate foreign keys against
	// them and null out anything unknown.
	UserIDs         map[int64]struct{}
	UserByInitials  map[string]int64
	UserRates       map[int64][]ActivityRate
	LocationIDs     map[int64]struct{}
	CompanyIDs      map[int64]struct{}
	ClientIDs       map[int64]struct{}
	EngineerIDs     map[int64]struct{}
	ProjectIDs      map[int64]struct{}
	ActivityTypeIDs map[int64]struct{}

	// RateByClassYear maps "class-year" to the hourly amount.
	RateByClassYear map[string]float64

	// Types is nil until the project types stage ran; the projects stage
	// hard-fails without it.
	Types *TypeMapping
}

func newRun(st *store.Store, cfg config.MigrationConfig) *Run {
	return &Run{
		Store:           st,
		Cfg:             cfg,
		Snapshots:       legacy.NewSnapshotReader(cfg.ExportDir),
		Log:             logrus.WithField("component", "migrate"),
		UserIDs:         make(map[int64]struct{}),
		UserByInitials:  make(map[string]int64),
		UserRates:       make(map[int64][]ActivityRate),
		LocationIDs:     make(map[int64]struct{}),
		CompanyIDs:      make(map[int64]struct{}),
		ClientIDs:       make(map[int64]struct{}),
		EngineerIDs:     make(map[int64]struct{}),
		ProjectIDs:      make(map[int64]struct{}),
		ActivityTypeIDs: make(map[int64]struct{}),
		RateByClassYear: make(map[string]float64),
	}
}
