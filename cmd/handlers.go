package cmd

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/loopline/loopline/sim"
)

// liveLine serialises HTTP player commands with the serve loop. The vehicle
// is not safe for concurrent use, so every access holds mu.
type liveLine struct {
	mu sync.Mutex
	s  *session
}

func (l *liveLine) step(realSeconds float64) sim.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.step(realSeconds)
	return l.s.vehicle.Snapshot()
}

// Request DTOs

type stopRequest struct {
	Stop int `json:"stop"`
}

type amountRequest struct {
	Amount int `json:"amount"`
}

type marketRequest struct {
	Market string `json:"market"`
}

type clockRequest struct {
	Paused        *bool    `json:"paused,omitempty"`
	SecsPerMinute *float64 `json:"secsPerMinute,omitempty"`
}

type actionResponse struct {
	OK     bool   `json:"ok"`
	Result string `json:"result,omitempty"`
}

func (l *liveLine) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/snapshot", l.handleSnapshot)
	mux.HandleFunc("POST /api/player/stand", l.handleStand)
	mux.HandleFunc("POST /api/player/board", l.handleBoard)
	mux.HandleFunc("POST /api/player/evade", l.handleEvade)
	mux.HandleFunc("POST /api/player/alight", l.handleAlight)
	mux.HandleFunc("POST /api/player/flag", l.handleFlag)
	mux.HandleFunc("POST /api/player/cancel-flag", l.handleCancelFlag)
	mux.HandleFunc("POST /api/player/pass", l.handlePass)
	mux.HandleFunc("POST /api/player/bribe", l.handleBribe)
	mux.HandleFunc("POST /api/player/confront", l.handleConfront)
	mux.HandleFunc("POST /api/market", l.handleMarket)
	mux.HandleFunc("POST /api/clock", l.handleClock)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func (l *liveLine) validStop(w http.ResponseWriter, stop int) bool {
	if stop < 0 || stop >= l.s.vehicle.Config().StopCount() {
		http.Error(w, "stop out of range", http.StatusBadRequest)
		return false
	}
	return true
}

func (l *liveLine) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	writeJSON(w, http.StatusOK, l.s.vehicle.Snapshot())
}

// handleStand moves the player to a stop; -1 leaves the platform.
func (l *liveLine) handleStand(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if !decode(w, r, &req) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if req.Stop != -1 && !l.validStop(w, req.Stop) {
		return
	}
	if l.s.vehicle.IsPlayerAboard() {
		writeJSON(w, http.StatusConflict, actionResponse{Result: "aboard"})
		return
	}
	l.s.standing = req.Stop
	writeJSON(w, http.StatusOK, actionResponse{OK: true})
}

func (l *liveLine) boardResult(w http.ResponseWriter, res sim.BoardResult) {
	writeJSON(w, http.StatusOK, actionResponse{OK: res == sim.BoardSuccess, Result: string(res)})
}

func (l *liveLine) handleBoard(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.s.clock
	l.boardResult(w, l.s.vehicle.Board(l.s.standing, c.CurrentHour(), c.CurrentDay(), l.s.market))
}

func (l *liveLine) handleEvade(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.boardResult(w, l.s.vehicle.EvadeFare(l.s.standing))
}

func (l *liveLine) handleAlight(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ok := l.s.vehicle.AlightPlayer()
	if ok {
		l.s.standing = l.s.vehicle.CurrentStopIndex()
	}
	writeJSON(w, http.StatusOK, actionResponse{OK: ok})
}

func (l *liveLine) handleFlag(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if !decode(w, r, &req) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.validStop(w, req.Stop) {
		return
	}
	l.s.vehicle.FlagAtStop(req.Stop)
	writeJSON(w, http.StatusOK, actionResponse{OK: true})
}

func (l *liveLine) handleCancelFlag(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.vehicle.CancelFlag()
	writeJSON(w, http.StatusOK, actionResponse{OK: true})
}

func (l *liveLine) handlePass(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	writeJSON(w, http.StatusOK, actionResponse{OK: l.s.vehicle.ActivatePass(l.s.clock.CurrentDay())})
}

func (l *liveLine) handleBribe(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	writeJSON(w, http.StatusOK, actionResponse{OK: l.s.vehicle.BribeInspector(req.Amount)})
}

func (l *liveLine) handleConfront(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	writeJSON(w, http.StatusOK, actionResponse{OK: l.s.vehicle.ConfrontInspector()})
}

func (l *liveLine) handleMarket(w http.ResponseWriter, r *http.Request) {
	var req marketRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := parseMarket(req.Market)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.setMarket(m)
	writeJSON(w, http.StatusOK, actionResponse{OK: true, Result: string(m)})
}

func (l *liveLine) handleClock(w http.ResponseWriter, r *http.Request) {
	var req clockRequest
	if !decode(w, r, &req) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.s.clock
	if req.SecsPerMinute != nil {
		if err := c.SetSpeed(*req.SecsPerMinute); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Paused != nil {
		if *req.Paused {
			c.Pause()
		} else {
			c.Resume()
		}
	}
	writeJSON(w, http.StatusOK, actionResponse{OK: true, Result: c.String()})
}
