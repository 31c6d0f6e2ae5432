package cache

import (
	"encoding/json"
	"fmt"

	"github.com/fuelops/backend/internal/domain/fuel"
)

// workspaceKeyPrefix namespaces workspace snapshots in shared stores
const workspaceKeyPrefix = "fuel:workspace:"

// ClosableWorkspaceStore is a workspace store holding background resources
type ClosableWorkspaceStore interface {
	fuel.WorkspaceStore
	Close() error
}

// Snapshots are stored encoded so a caller holding a returned workspace
// can never change what the store holds.
func encodeWorkspace(ws *fuel.Workspace) ([]byte, error) {
	data, err := json.Marshal(ws)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workspace %s: %w", ws.ID, err)
	}
	return data, nil
}

func decodeWorkspace(data []byte) (*fuel.Workspace, error) {
	var ws fuel.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("failed to decode workspace: %w", err)
	}
	return &ws, nil
}
