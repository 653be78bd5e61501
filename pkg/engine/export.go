package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/DrSkyle/aquagrid/pkg/engine/report"
	"github.com/DrSkyle/aquagrid/pkg/network"
)

// Artifact keys under the configured output.
const (
	KeyNetwork    = "network.json"
	KeyInventory  = "inventory"
	KeySweep      = "sweep"
	outcomePrefix = "outcomes"
)

// ExportNetwork writes the network document and its segment inventory.
// It is a no-op without a store.
func (e *Engine) ExportNetwork(ctx context.Context, net network.Network) error {
	if e.Store == nil {
		return nil
	}

	doc, err := json.MarshalIndent(net, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}
	if err := e.put(ctx, KeyNetwork, append(doc, '\n')); err != nil {
		return err
	}

	var buf bytes.Buffer
	key := KeyInventory + "." + e.config.Output.Format
	if e.config.Output.Format == "csv" {
		err = report.WriteInventoryCSV(&buf, net)
	} else {
		err = report.WriteJSON(&buf, report.Inventory(net))
	}
	if err != nil {
		return fmt.Errorf("failed to render inventory: %w", err)
	}
	return e.put(ctx, key, buf.Bytes())
}

// ExportOutcome writes outcomes/<run id>.json.
func (e *Engine) ExportOutcome(ctx context.Context, o *Outcome) error {
	if e.Store == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, o); err != nil {
		return fmt.Errorf("failed to render outcome: %w", err)
	}
	return e.put(ctx, path.Join(outcomePrefix, o.RunID+".json"), buf.Bytes())
}

// ExportSweep writes the ranked sweep in the configured format.
func (e *Engine) ExportSweep(ctx context.Context, entries []report.SweepEntry) error {
	if e.Store == nil {
		return nil
	}

	var (
		buf bytes.Buffer
		err error
	)
	key := KeySweep + "." + e.config.Output.Format
	if e.config.Output.Format == "csv" {
		err = report.WriteSweepCSV(&buf, entries)
	} else {
		err = report.WriteJSON(&buf, entries)
	}
	if err != nil {
		return fmt.Errorf("failed to render sweep: %w", err)
	}
	return e.put(ctx, key, buf.Bytes())
}

func (e *Engine) put(ctx context.Context, key string, data []byte) error {
	ctx, span := e.Tracer.Start(ctx, "Engine.Export")
	defer span.End()

	if err := e.Store.Put(ctx, key, data); err != nil {
		e.Logger.Warn("Failed to export artifact", "key", key, "error", err)
		return fmt.Errorf("failed to export %s: %w", key, err)
	}
	e.Logger.Info("Artifact exported", "key", key, "bytes", len(data))
	return nil
}
