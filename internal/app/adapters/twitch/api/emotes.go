package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain/ident"
	"twitchchat/internal/app/infrastructure/config"
	"twitchchat/internal/app/infrastructure/storage"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

const emoteRetryInterval = 60 * time.Second

// EmoteCatalog fetches the emote sets available to the logged-in identity
// and keeps them cached across restarts. A failed fetch is retried on a
// fixed interval until the set list changes or the catalog stops.
type EmoteCatalog struct {
	log    logger.Logger
	cfg    *config.Config
	client *http.Client
	cache  *storage.Cache[[]ports.Emote]

	mu       sync.Mutex
	sets     string
	onUpdate func(sets string, catalog map[string][]ports.Emote)
	retry    *time.Timer
	stopped  bool
}

func NewEmoteCatalog(log logger.Logger, cfg *config.Config, client *http.Client, cache *storage.Cache[[]ports.Emote]) *EmoteCatalog {
	return &EmoteCatalog{
		log:    log,
		cfg:    cfg,
		client: client,
		cache:  cache,
	}
}

func (e *EmoteCatalog) SetOnUpdate(fn func(sets string, catalog map[string][]ports.Emote)) {
	e.mu.Lock()
	e.onUpdate = fn
	e.mu.Unlock()
}

// Refresh replaces the tracked set list and fetches it in the background.
// A newer Refresh supersedes any retry cycle still running for an older
// list.
func (e *EmoteCatalog) Refresh(sets string) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.sets = sets
	if e.retry != nil {
		e.retry.Stop()
		e.retry = nil
	}
	e.mu.Unlock()

	go e.fetch(sets)
}

func (e *EmoteCatalog) fetch(sets string) {
	catalog, err := e.request(sets)

	e.mu.Lock()
	if e.stopped || e.sets != sets {
		e.mu.Unlock()
		return
	}
	if err != nil {
		e.log.Warn("Failed to fetch emote sets, retrying", "sets", sets, "error", err.Error())
		e.retry = time.AfterFunc(emoteRetryInterval, func() { e.fetch(sets) })
		e.mu.Unlock()
		return
	}
	fn := e.onUpdate
	e.mu.Unlock()

	for id, emotes := range catalog {
		e.cache.Set(id, emotes)
	}
	snapshot := e.cache.All()
	metrics.EmoteCatalogSets.Set(float64(len(snapshot)))
	e.log.Info("Emote catalog updated", "sets", sets)

	if fn != nil {
		fn(sets, snapshot)
	}
}

type wireEmote struct {
	ID   json.Number `json:"id"`
	Code string      `json:"code"`
}

func (e *EmoteCatalog) request(sets string) (map[string][]ports.Emote, error) {
	req, err := http.NewRequest(http.MethodGet,
		"https://api.twitch.tv/kraken/chat/emoticon_images?emotesets="+url.QueryEscape(sets), nil)
	if err != nil {
		return nil, err
	}

	token := strings.TrimPrefix(ident.Token(e.cfg.Identity.OAuth), "oauth:")
	if token != "" {
		req.Header.Set("Authorization", "OAuth "+token)
	}
	req.Header.Set("Client-ID", e.cfg.Identity.ClientID)
	req.Header.Set("Accept", "application/vnd.twitchtv.v5+json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("emote sets request returned %s: %s", resp.Status, string(raw))
	}

	var body struct {
		Sets map[string][]wireEmote `json:"emoticon_sets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	catalog := make(map[string][]ports.Emote, len(body.Sets))
	for id, emotes := range body.Sets {
		converted := make([]ports.Emote, 0, len(emotes))
		for _, emote := range emotes {
			converted = append(converted, ports.Emote{ID: emote.ID.String(), Code: emote.Code})
		}
		catalog[id] = converted
	}
	return catalog, nil
}

func (e *EmoteCatalog) Snapshot() map[string][]ports.Emote {
	return e.cache.All()
}

func (e *EmoteCatalog) Stop() {
	e.mu.Lock()
	e.stopped = true
	if e.retry != nil {
		e.retry.Stop()
		e.retry = nil
	}
	e.mu.Unlock()

	e.cache.Close()
}
