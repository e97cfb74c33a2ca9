// Copyright (c) 2024 Neomantra Corp
//
// Base-data registry: contracts/commodities/sessions/holidays loaded from
// YAML, with optional remote refresh. YAML domain config mirrors
// ChoSanghyuk-blackholedex's own on-disk config pattern (gopkg.in/yaml.v3);
// remote refresh reuses the teacher's retryablehttp client from
// internal/tui/download_manager.go.

package basedata

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"gopkg.in/yaml.v3"

	"wondertrader/wt"
)

// registryDoc is the on-disk YAML shape for contracts.yaml.
type registryDoc struct {
	Sessions []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Sections []struct {
			Open  int `yaml:"open"`
			Close int `yaml:"close"`
		} `yaml:"sections"`
	} `yaml:"sessions"`
	Holidays []struct {
		Template string   `yaml:"template"`
		Dates    []uint32 `yaml:"dates"`
	} `yaml:"holidays"`
	Contracts []struct {
		Exchange    string  `yaml:"exchange"`
		Code        string  `yaml:"code"`
		Product     string  `yaml:"product"`
		PriceTick   float64 `yaml:"price_tick"`
		VolumeScale float64 `yaml:"volume_scale"`
		MarginRate  float64 `yaml:"margin_rate"`
		FeeRate     float64 `yaml:"fee_rate"`
		SessionID   string  `yaml:"session_id"`
		CoverMode   string  `yaml:"cover_mode"` // "open_only" | "cover_today" | "cover_any"
		IsT1        bool    `yaml:"is_t1"`
		CanShort    bool    `yaml:"can_short"`
	} `yaml:"contracts"`
}

// Registry is the in-memory base-data store (spec §4.2).
type Registry struct {
	log *slog.Logger

	mu        sync.RWMutex
	sessions  map[string]*SessionInfo
	holidays  map[string]*HolidayCalendar
	contracts map[string]*ContractInfo // keyed by "EX.CODE"
}

// NewRegistry constructs an empty registry; logger defaults to slog.Default().
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:       log,
		sessions:  map[string]*SessionInfo{},
		holidays:  map[string]*HolidayCalendar{},
		contracts: map[string]*ContractInfo{},
	}
}

// LoadFile parses a contracts.yaml document from disk and merges it in.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.load(f)
}

// RefreshRemote fetches a contracts.yaml document over HTTP(S), retrying
// transient failures via retryablehttp, and merges it in.
func (r *Registry) RefreshRemote(url string) error {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	client.HTTPClient.Timeout = 30 * time.Second

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("%w: %v", wt.ErrConfig, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: registry refresh %s: %d: %s", wt.ErrConfig, url, resp.StatusCode, string(body))
	}
	return r.load(resp.Body)
}

func (r *Registry) load(src io.Reader) error {
	var doc registryDoc
	dec := yaml.NewDecoder(src)
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", wt.ErrConfig, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range doc.Sessions {
		si := &SessionInfo{ID: s.ID, Name: s.Name}
		for _, sec := range s.Sections {
			si.Sections = append(si.Sections, Section{Open: sec.Open, Close: sec.Close})
		}
		r.sessions[si.ID] = si
	}
	for _, h := range doc.Holidays {
		r.holidays[h.Template] = NewHolidayCalendar(h.Template, h.Dates)
	}
	for _, c := range doc.Contracts {
		ci := &ContractInfo{
			Exchange:    c.Exchange,
			Code:        c.Code,
			Product:     c.Product,
			PriceTick:   c.PriceTick,
			VolumeScale: c.VolumeScale,
			MarginRate:  c.MarginRate,
			FeeRate:     c.FeeRate,
			SessionID:   c.SessionID,
			CoverMode:   parseCoverMode(c.CoverMode),
			IsT1:        c.IsT1,
			CanShort:    c.CanShort,
		}
		r.contracts[ci.FullCode()] = ci
		r.log.Debug("registered contract", slog.String("code", ci.FullCode()))
	}
	return nil
}

func parseCoverMode(s string) wt.CoverMode {
	switch s {
	case "cover_today":
		return wt.CoverMode_CoverToday
	case "cover_any":
		return wt.CoverMode_CoverAny
	default:
		return wt.CoverMode_OpenOnly
	}
}

// Contract looks up a contract by "EX.CODE".
func (r *Registry) Contract(fullCode string) (*ContractInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[fullCode]
	if !ok {
		return nil, wt.ErrContractNotFound
	}
	return c, nil
}

// ListContracts returns every registered contract, optionally filtered by
// exchange. The result is a snapshot copy of the internal pointers; callers
// must not mutate the returned ContractInfo values.
func (r *Registry) ListContracts(exchange string) []*ContractInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ContractInfo, 0, len(r.contracts))
	for _, c := range r.contracts {
		if exchange != "" && c.Exchange != exchange {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Session looks up a session schedule by id.
func (r *Registry) Session(id string) (*SessionInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, wt.ErrSessionNotFound
	}
	return s, nil
}

// ContractSession is a convenience lookup chaining Contract -> Session.
func (r *Registry) ContractSession(fullCode string) (*SessionInfo, error) {
	c, err := r.Contract(fullCode)
	if err != nil {
		return nil, err
	}
	return r.Session(c.SessionID)
}

// Holidays looks up a holiday calendar by template name.
func (r *Registry) Holidays(template string) *HolidayCalendar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.holidays[template]
	if !ok {
		return NewHolidayCalendar(template, nil)
	}
	return h
}
