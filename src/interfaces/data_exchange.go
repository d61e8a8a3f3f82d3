package interfaces

import "gridwatch/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger shares pipeline results with external consumers (map UI, dashboards).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a run report to connected listeners and updates state.
	Broadcast(report models.MRunReport)

	// -----------------------------------------------------------------------------
	// UpdateAllDatas updates the internal state without broadcasting
	UpdateAllDatas(report models.MRunReport)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
