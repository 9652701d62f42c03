package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/text/language"

	"github.com/stoneveil/bastion/internal/encounter/domain"
	"github.com/stoneveil/bastion/internal/encounter/service"
	apperrors "github.com/stoneveil/bastion/internal/platform/errors"
	"github.com/stoneveil/bastion/internal/platform/errors/i18n"
)

// Handler upgrades HTTP requests to websocket sessions and dispatches their
// commands against the encounter registry.
type Handler struct {
	registry *service.Registry
	hub      *Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
	matcher  language.Matcher
	locales  []string
}

// NewHandler builds the websocket endpoint. User-facing error text follows
// the connection's Accept-Language header, falling back to the base locale.
func NewHandler(registry *service.Registry, hub *Hub, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	// The matcher falls back to its first tag, so the base locale leads.
	locales := []string{i18n.BaseLocale}
	for _, locale := range i18n.Locales() {
		if locale != i18n.BaseLocale {
			locales = append(locales, locale)
		}
	}
	tags := make([]language.Tag, 0, len(locales))
	for _, locale := range locales {
		tags = append(tags, language.MustParse(locale))
	}
	return &Handler{
		registry: registry,
		hub:      hub,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		matcher: language.NewMatcher(tags),
		locales: locales,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade: %v", err)
		return
	}

	client := newClient(h.hub, h, conn, h.negotiateLocale(r.Header.Get("Accept-Language")))
	if !h.hub.add(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// negotiateLocale matches the Accept-Language header against the registered
// catalogs.
func (h *Handler) negotiateLocale(acceptLanguage string) string {
	if acceptLanguage == "" {
		return i18n.BaseLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return i18n.BaseLocale
	}
	_, index, _ := h.matcher.Match(tags...)
	if index < 0 || index >= len(h.locales) {
		return i18n.BaseLocale
	}
	return h.locales[index]
}

// commandTimeout bounds one command's registry and store work.
const commandTimeout = 10 * time.Second

func (h *Handler) dispatch(c *Client, command Command) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch command.Type {
	case CommandSpawn:
		var payload spawnPayload
		if !h.decode(c, command, &payload) {
			return
		}
		snapshot, err := h.registry.Spawn(ctx, payload.DefinitionID, payload.Location, payload.PoolModifier)
		if err != nil {
			h.fail(c, command, err)
			return
		}
		c.watch(snapshot.ID)
		h.result(c, command, snapshot)

	case CommandAnnounce:
		snapshot, err := h.registry.Announce(ctx, command.EncounterID)
		if err != nil {
			h.fail(c, command, err)
			return
		}
		h.result(c, command, snapshot)

	case CommandJoin:
		var payload joinPayload
		if !h.decode(c, command, &payload) {
			return
		}
		snapshot, err := h.registry.Join(ctx, command.EncounterID, payload.Player)
		if err != nil {
			h.fail(c, command, err)
			return
		}
		c.watch(command.EncounterID)
		h.result(c, command, snapshot)

	case CommandLeave:
		var payload leavePayload
		if !h.decode(c, command, &payload) {
			return
		}
		if err := h.registry.Leave(ctx, command.EncounterID, payload.PlayerID); err != nil {
			h.fail(c, command, err)
			return
		}
		h.result(c, command, nil)

	case CommandAttack:
		var payload attackPayload
		if !h.decode(c, command, &payload) {
			return
		}
		result, err := h.registry.Attack(ctx, command.EncounterID, domain.AttackInput{
			PlayerID:   payload.PlayerID,
			Damage:     payload.Damage,
			Critical:   payload.Critical,
			SourceName: payload.SourceName,
		})
		if err != nil {
			h.fail(c, command, err)
			return
		}
		h.result(c, command, result)

	case CommandHeal:
		var payload healPayload
		if !h.decode(c, command, &payload) {
			return
		}
		if err := h.registry.Heal(ctx, command.EncounterID, payload.PlayerID, payload.TargetID, payload.Amount); err != nil {
			h.fail(c, command, err)
			return
		}
		h.result(c, command, nil)

	case CommandRepair:
		var payload repairPayload
		if !h.decode(c, command, &payload) {
			return
		}
		if err := h.registry.Repair(ctx, command.EncounterID, payload.PlayerID, payload.Amount); err != nil {
			h.fail(c, command, err)
			return
		}
		h.result(c, command, nil)

	case CommandUseAbility:
		var payload useAbilityPayload
		if !h.decode(c, command, &payload) {
			return
		}
		result, err := h.registry.UseAbility(ctx, command.EncounterID, payload.AbilityID)
		if err != nil {
			h.fail(c, command, err)
			return
		}
		h.result(c, command, result)

	case CommandStrike:
		var payload strikePayload
		if !h.decode(c, command, &payload) {
			return
		}
		result, err := h.registry.AdversaryStrike(ctx, command.EncounterID, payload.Amount)
		if err != nil {
			h.fail(c, command, err)
			return
		}
		h.result(c, command, result)

	case CommandGetState:
		snapshot, err := h.registry.GetState(ctx, command.EncounterID)
		if err != nil {
			h.fail(c, command, err)
			return
		}
		h.result(c, command, snapshot)

	case CommandList:
		var payload listPayload
		if len(command.Payload) > 0 && !h.decode(c, command, &payload) {
			return
		}
		h.result(c, command, h.registry.List(ctx, domain.StatusFromString(payload.Status)))

	case CommandHistory:
		var payload historyPayload
		if len(command.Payload) > 0 && !h.decode(c, command, &payload) {
			return
		}
		if payload.PlayerID != "" {
			summaries, err := h.registry.PlayerHistory(ctx, payload.PlayerID)
			if err != nil {
				h.fail(c, command, err)
				return
			}
			h.result(c, command, summaries)
			return
		}
		summary, err := h.registry.History(ctx, command.EncounterID)
		if err != nil {
			h.fail(c, command, err)
			return
		}
		h.result(c, command, summary)

	case CommandAchievements:
		var payload historyPayload
		if !h.decode(c, command, &payload) {
			return
		}
		unlocks, err := h.registry.PlayerAchievements(ctx, payload.PlayerID)
		if err != nil {
			h.fail(c, command, err)
			return
		}
		h.result(c, command, unlocks)

	case CommandWatch:
		if command.EncounterID == "" {
			c.mu.Lock()
			c.watchAll = true
			c.mu.Unlock()
		} else {
			c.watch(command.EncounterID)
		}
		h.result(c, command, nil)

	case CommandUnwatch:
		if command.EncounterID == "" {
			c.mu.Lock()
			c.watchAll = false
			c.mu.Unlock()
		} else {
			c.unwatch(command.EncounterID)
		}
		h.result(c, command, nil)

	default:
		c.reply(Response{Type: ResponseError, RequestID: command.RequestID, Error: &Fault{
			Code:    "unknown_command",
			Message: "unknown command type " + command.Type,
		}})
	}
}

func (h *Handler) decode(c *Client, command Command, target any) bool {
	if err := json.Unmarshal(command.Payload, target); err != nil {
		c.reply(Response{Type: ResponseError, RequestID: command.RequestID, Error: &Fault{
			Code:    "malformed_payload",
			Message: "payload does not match command " + command.Type,
		}})
		return false
	}
	return true
}

func (h *Handler) result(c *Client, command Command, payload any) {
	c.reply(Response{Type: ResponseResult, RequestID: command.RequestID, Payload: payload})
}

// fail renders a registry error in the client's locale.
func (h *Handler) fail(c *Client, command Command, err error) {
	code := apperrors.CodeOf(err)
	metadata := apperrors.MetadataOf(err)
	c.reply(Response{Type: ResponseError, RequestID: command.RequestID, Error: &Fault{
		Code:     string(code),
		Message:  i18n.GetCatalog(c.locale).Format(string(code), metadata),
		Metadata: metadata,
	}})
}
