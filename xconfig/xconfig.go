// Package xconfig provides a process-wide, atomically-swapped configuration
// object in the style of aistore's cmn.GCO ("global config owner"): callers
// read an immutable snapshot via Get() and installers publish a new one via
// BeginUpdate/CommitUpdate, never mutating a snapshot in place.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package xconfig

import (
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Duration wraps time.Duration for JSON (de)serialisation as aistore's
// cos.Duration does, so config files can use "1s"/"500ms" literals.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) D() time.Duration { return time.Duration(d) }

// WorkerTimeouts mirrors one row of spec.md §6's timeout table.
type WorkerTimeouts struct {
	Throttle Duration `json:"throttle"`
	Debounce Duration `json:"debounce"`
	Busy     Duration `json:"busy"`
	MinForce Duration `json:"min_force"`
	MaxForce Duration `json:"max_force"`
}

// Config is the root configuration snapshot. It is never mutated after
// publication; BeginUpdate clones it and CommitUpdate atomically swaps
// the pointer held by the package-level owner.
type Config struct {
	// indexing pipeline, spec.md §4.2/§5
	BulkSize       int `json:"bulk_size"`        // B
	DocPreparers   int `json:"doc_preparers"`     // N
	SemaphoreMax   int `json:"semaphore_max"`     // limit_max
	SemaphoreBatch int `json:"semaphore_batch"`   // limit_signal
	DBRetries      int `json:"db_retries"`        // DB_RETRIES

	// schema service, spec.md §3/§4.1
	MaxSchemaRecursion int `json:"max_schema_recursion"`

	// debounced workers, spec.md §6
	Committer           WorkerTimeouts `json:"committer"`
	Fsyncher            WorkerTimeouts `json:"fsyncher"`
	DBUpdater           WorkerTimeouts `json:"db_updater"`
	TriggerReplication  WorkerTimeouts `json:"trigger_replication"`
}

// Default returns the configuration described verbatim by spec.md §5/§6.
func Default() *Config {
	return &Config{
		BulkSize:            100,
		DocPreparers:        4,
		SemaphoreMax:        16,
		SemaphoreBatch:      8,
		DBRetries:           3,
		MaxSchemaRecursion:  10,
		Committer: WorkerTimeouts{
			Throttle: 0, Debounce: Duration(time.Second), Busy: Duration(3 * time.Second),
			MinForce: Duration(8 * time.Second), MaxForce: Duration(10 * time.Second),
		},
		Fsyncher: WorkerTimeouts{
			Throttle: Duration(time.Second), Debounce: Duration(500 * time.Millisecond), Busy: Duration(800 * time.Millisecond),
			MinForce: Duration(2500 * time.Millisecond), MaxForce: Duration(3500 * time.Millisecond),
		},
		DBUpdater: WorkerTimeouts{
			Throttle: Duration(time.Second), Debounce: Duration(100 * time.Millisecond), Busy: Duration(500 * time.Millisecond),
			MinForce: Duration(4900 * time.Millisecond), MaxForce: Duration(5100 * time.Millisecond),
		},
		TriggerReplication: WorkerTimeouts{
			Throttle: Duration(time.Second), Debounce: Duration(100 * time.Millisecond), Busy: Duration(500 * time.Millisecond),
			MinForce: Duration(4900 * time.Millisecond), MaxForce: Duration(5100 * time.Millisecond),
		},
	}
}

type owner struct {
	mtx sync.Mutex
	c   *Config
}

var gco = &owner{c: Default()}

// Get returns the current configuration snapshot. Safe for concurrent use;
// the returned pointer must never be mutated by the caller.
func Get() *Config {
	gco.mtx.Lock()
	defer gco.mtx.Unlock()
	return gco.c
}

// BeginUpdate clones the current snapshot for in-progress editing.
func BeginUpdate() *Config {
	cur := Get()
	clone := *cur
	return &clone
}

// CommitUpdate publishes a new snapshot, replacing the current one.
func CommitUpdate(c *Config) {
	gco.mtx.Lock()
	gco.c = c
	gco.mtx.Unlock()
}
