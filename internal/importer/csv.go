// Package importer loads bulk client facts from CSV exports and submits
// them through the canonicalizer as import-sourced findings.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalworks/agency-ops/internal/canonical"
	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/schema"
)

// importConfidence is the default confidence for imported facts. Imports come
// from a system of record, so they rank above scraped findings but below an
// operator confirmation.
const importConfidence = 0.9

// entityColumn is the required CSV column naming the business entity.
const entityColumn = "entity_id"

// Importer parses CSV exports and canonicalizes their rows.
type Importer struct {
	canon  *canonical.Canonicalizer
	schema *schema.Registry
}

// New creates an Importer.
func New(canon *canonical.Canonicalizer, reg *schema.Registry) *Importer {
	return &Importer{canon: canon, schema: reg}
}

// ImportFile reads a CSV export and runs each row's fields through the
// canonicalizer. The header row maps columns to schema field keys; unknown
// columns are carried through and rejected by the canonicalizer so the
// operator sees them in the outcome. Returns per-entity results keyed by
// entity ID.
func (im *Importer) ImportFile(ctx context.Context, path string, dryRun bool) (map[string]*canonical.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("importer: open %s", path))
	}
	defer f.Close() //nolint:errcheck

	batches, err := ParseCandidates(im.schema, f)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*canonical.Result, len(batches))
	entities := make([]string, 0, len(batches))
	for entityID := range batches {
		entities = append(entities, entityID)
	}
	sort.Strings(entities)

	for _, entityID := range entities {
		res, err := im.canon.Canonicalize(ctx, entityID, batches[entityID], canonical.Options{
			Source: model.SourceImport,
			DryRun: dryRun,
		})
		if err != nil {
			return results, eris.Wrapf(err, "importer: canonicalize %s", entityID)
		}
		results[entityID] = res
	}

	zap.L().Info("csv import finished",
		zap.String("path", path),
		zap.Int("entities", len(entities)),
		zap.Bool("dry_run", dryRun))
	return results, nil
}

// ParseCandidates reads CSV content into per-entity candidate batches. The
// first row is the header; one column must be entity_id and the rest name
// schema field keys. Empty cells are skipped; rows without an entity ID are
// skipped. Duplicate entity rows merge into one batch.
func ParseCandidates(reg *schema.Registry, r io.Reader) (map[string][]model.Candidate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "importer: read csv")
	}
	if len(records) < 2 {
		return map[string][]model.Candidate{}, nil
	}

	headers := records[0]
	entityIdx := -1
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), entityColumn) {
			entityIdx = i
			break
		}
	}
	if entityIdx < 0 {
		return nil, eris.Errorf("importer: csv has no %s column", entityColumn)
	}

	batches := make(map[string][]model.Candidate)
	for _, row := range records[1:] {
		if entityIdx >= len(row) {
			continue
		}
		entityID := strings.TrimSpace(row[entityIdx])
		if entityID == "" {
			continue
		}

		for i, h := range headers {
			if i == entityIdx || i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			key := strings.TrimSpace(h)
			batches[entityID] = append(batches[entityID], model.Candidate{
				Key:        key,
				Value:      parseCell(reg, key, cell),
				Confidence: importConfidence,
				Evidence:   "csv import",
			})
		}
	}
	return batches, nil
}

// parseCell converts a CSV cell to the field's value kind: lists split on
// semicolons, numbers parse as floats, everything else stays a string. An
// unknown key keeps the raw string so the canonicalizer can report it.
func parseCell(reg *schema.Registry, key, cell string) any {
	def := reg.ByKey(key)
	if def == nil {
		return cell
	}
	switch def.Kind {
	case schema.KindList:
		parts := strings.Split(cell, ";")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		return out
	case schema.KindNumber:
		if n, err := strconv.ParseFloat(cell, 64); err == nil {
			return n
		}
		return cell
	default:
		return cell
	}
}
