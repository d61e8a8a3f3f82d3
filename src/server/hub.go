package server

import (
	"encoding/json"
	"net/http"
	"time"

	"gridwatch/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				s.dropClient(client)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))
			client.trySend(s.Snapshot("INITIAL", client.Zones()))

		case client := <-s.unregister:
			s.dropClient(client)

		case message := <-s.broadcast:
			for client := range s.clients {
				if !client.trySend(filterZones(message, client.Zones())) {
					// too slow, disconnect so the hub never blocks
					s.dropClient(client)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) dropClient(client *Client) {
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
		s.connections.Store(int64(len(s.clients)))
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateAllDatas replaces the cached snapshot with the outcome of a run.
func (s *FastAPIServer) UpdateAllDatas(report models.MRunReport) {
	state := latestFromReport(report, "UPDATE")

	s.stateMutex.Lock()
	s.latestState = state
	s.latestWindow = report.Window
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------

// Broadcast queues a run report for every connected client. The report is
// dropped if the hub is not keeping up.
func (s *FastAPIServer) Broadcast(report models.MRunReport) {
	select {
	case s.broadcast <- latestFromReport(report, "UPDATE"):
	default:
		s.Logger.Warning("Broadcast queue full, dropping run %s", report.RunID)
	}
}

// -----------------------------------------------------------------------------

func latestFromReport(report models.MRunReport, kind string) *models.MLatestData {
	ts := report.FinishedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	state := &models.MLatestData{
		Type:       kind,
		RunID:      report.RunID,
		ZonePrices: make(map[models.ZoneCode]float64, len(report.ZonePrices)),
		Zones:      make(map[models.ZoneCode]models.MZoneReport, len(report.Zones)),
		Timestamp:  ts.Unix(),
	}
	for z, p := range report.ZonePrices {
		state.ZonePrices[z] = p
	}
	for z, zr := range report.Zones {
		state.Zones[z] = zr
	}
	return state
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of the cached state restricted to zones (all zones
// when empty).
func (s *FastAPIServer) Snapshot(kind string, zones map[models.ZoneCode]bool) *models.MLatestData {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	out := filterZones(s.latestState, zones)
	out.Type = kind
	return out
}

// -----------------------------------------------------------------------------

func filterZones(state *models.MLatestData, zones map[models.ZoneCode]bool) *models.MLatestData {
	out := &models.MLatestData{
		Type:       state.Type,
		RunID:      state.RunID,
		ZonePrices: make(map[models.ZoneCode]float64),
		Zones:      make(map[models.ZoneCode]models.MZoneReport),
		Timestamp:  state.Timestamp,
	}
	for z, p := range state.ZonePrices {
		if len(zones) == 0 || zones[z] {
			out.ZonePrices[z] = p
		}
	}
	for z, zr := range state.Zones {
		if len(zones) == 0 || zones[z] {
			out.Zones[z] = zr
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn)

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies a subscribe command and answers with the
// filtered snapshot. Unknown zones are ignored.
func (s *FastAPIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	zones := make(map[models.ZoneCode]bool, len(cmd.Zones))
	for _, raw := range cmd.Zones {
		if z, err := models.ParseZoneCode(raw); err == nil {
			zones[z] = true
		}
	}
	client.SetZones(zones)

	client.trySend(s.Snapshot("INITIAL", zones))
}
