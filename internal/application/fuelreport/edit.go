package fuelreport

import (
	"context"
	"fmt"
	"strings"

	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/logger"
)

// Editable unit fields. Derived values are recomputed, never edited.
const (
	FieldSondingAwal   = "sonding_awal"
	FieldSondingAkhir  = "sonding_akhir"
	FieldRitasi        = "ritasi"
	FieldFlowAwal      = "flow_awal"
	FieldFlowAkhir     = "flow_akhir"
	FieldIssuingReport = "issuing_report"
	FieldStatus        = "status"
	FieldLokasi        = "lokasi"
)

// UpdateUnit applies operator corrections to one unit and re-reconciles.
// Numbers may be sent as JSON numbers or as report-style text.
func (s *Service) UpdateUnit(ctx context.Context, workspaceID, unitID string, patch map[string]any) (*fuel.Workspace, error) {
	ctx = logger.WithWorkspaceID(ctx, workspaceID)

	ws, err := s.processed(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	parsed := ws.Parsed.Clone()
	u, ok := parsed.Lookup(unitID)
	if !ok {
		return nil, fuel.ErrUnitNotFound
	}

	for field, value := range patch {
		if err := applyField(u, field, value); err != nil {
			return nil, err
		}
	}

	rec, err := s.Reconcile(ctx, parsed)
	if err != nil {
		return nil, err
	}

	updated := &fuel.Workspace{
		ID:        ws.ID,
		Text:      ws.Text,
		Parsed:    parsed,
		Result:    rec,
		Issues:    fuel.Validate(rec),
		UpdatedAt: s.now(),
	}
	if err := s.workspaces.Put(ctx, updated); err != nil {
		return nil, fmt.Errorf("save workspace: %w", err)
	}
	return updated, nil
}

func applyField(u *fuel.UnitRecord, field string, value any) error {
	switch field {
	case FieldSondingAwal:
		u.SondingAwal = heightText(value)
	case FieldSondingAkhir:
		u.SondingAkhir = heightText(value)
	case FieldRitasi:
		u.Ritasi = fuel.NormalizeAny(value)
	case FieldFlowAwal:
		u.FlowAwal = fuel.NormalizeAny(value)
	case FieldFlowAkhir:
		u.FlowAkhir = fuel.NormalizeAny(value)
	case FieldIssuingReport:
		u.IssuingReport = fuel.NormalizeAny(value)
	case FieldStatus:
		u.Status = strings.ToUpper(text(value))
	case FieldLokasi:
		u.Lokasi = text(value)
	default:
		return fuel.ErrUnknownField
	}
	return nil
}

// heightText keeps sonding as text; an empty or zero value clears it.
func heightText(v any) string {
	h := fuel.ParseHeight(text(v))
	if h.IsZero() {
		return ""
	}
	return h.String()
}

func text(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
