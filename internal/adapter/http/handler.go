package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"sodaclicker/internal/app/action"
	"sodaclicker/internal/app/auth"
	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/app/replay"
	"sodaclicker/internal/app/save"
	"sodaclicker/internal/app/session"
	"sodaclicker/internal/app/status"
	"sodaclicker/internal/app/tick"
	"sodaclicker/internal/domain/economy"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const idempotencyKeyHeader = "Idempotency-Key"
const authorizationHeader = "Authorization"

type Handler struct {
	RegisterUC auth.RegisterUseCase
	AuthUC     auth.VerifyUseCase
	Tokens     auth.TokenIssuer
	ClickUC    action.ClickUseCase
	PurchaseUC action.PurchaseUseCase
	TickUC     tick.UseCase
	StatusUC   status.UseCase
	SaveUC     save.SaveUseCase
	ExportUC   save.ExportUseCase
	ImportUC   save.ImportUseCase
	ResetUC    save.ResetUseCase
	CloseUC    save.CloseUseCase
	ReplayUC   replay.UseCase
	KPI        kpiSnapshotProvider
	// CORSOrigins lists the browser origins allowed to call the API. Empty
	// allows any origin.
	CORSOrigins []string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware(h.CORSOrigins))

	player := s.Group("/api/player")
	player.POST("/register", h.register)
	player.POST("/session", h.openSession)

	game := s.Group("/api/game")
	game.POST("/click", h.click)
	game.POST("/purchase", h.purchase)
	game.POST("/tick", h.tick)
	game.GET("/status", h.status)
	game.GET("/snapshot", h.exportSnapshot)
	game.POST("/snapshot", h.importSnapshot)
	game.POST("/save", h.save)
	game.POST("/reset", h.reset)
	game.POST("/close", h.closeSession)
	game.GET("/replay", h.replay)

	s.GET("/ops/kpi", h.kpi)
}

type sessionRequest struct {
	PlayerID  string `json:"player_id"`
	PlayerKey string `json:"player_key"`
}

type sessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type clickRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type purchaseRequest struct {
	Upgrade        string `json:"upgrade"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (h Handler) register(c context.Context, ctx *app.RequestContext) {
	resp, err := h.RegisterUC.Execute(c, auth.RegisterRequest{})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) openSession(c context.Context, ctx *app.RequestContext) {
	var body sessionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := h.AuthUC.Execute(c, auth.VerifyRequest{PlayerID: body.PlayerID, PlayerKey: body.PlayerKey}); err != nil {
		writeError(ctx, err)
		return
	}
	token, expires, err := h.Tokens.Issue(strings.TrimSpace(body.PlayerID))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, sessionResponse{Token: token, ExpiresAt: expires.Format(time.RFC3339)})
}

func (h Handler) click(c context.Context, ctx *app.RequestContext) {
	playerID, err := h.requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body clickRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ClickUC.Execute(c, action.ClickRequest{PlayerID: playerID, X: body.X, Y: body.Y})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) purchase(c context.Context, ctx *app.RequestContext) {
	playerID, err := h.requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body purchaseRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	key := strings.TrimSpace(string(ctx.GetHeader(idempotencyKeyHeader)))
	if key == "" {
		key = body.IdempotencyKey
	}
	resp, err := h.PurchaseUC.Execute(c, action.PurchaseRequest{
		PlayerID:       playerID,
		Upgrade:        economy.UpgradeID(strings.TrimSpace(body.Upgrade)),
		IdempotencyKey: key,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) tick(c context.Context, ctx *app.RequestContext) {
	playerID, err := h.requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp, err := h.TickUC.Execute(c, tick.Request{PlayerID: playerID})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	playerID, err := h.requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp, err := h.StatusUC.Execute(c, status.Request{PlayerID: playerID})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) exportSnapshot(c context.Context, ctx *app.RequestContext) {
	playerID, err := h.requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp, err := h.ExportUC.Execute(c, save.Request{PlayerID: playerID})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp.Snapshot)
}

func (h Handler) importSnapshot(c context.Context, ctx *app.RequestContext) {
	playerID, err := h.requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp, err := h.ImportUC.Execute(c, save.ImportRequest{PlayerID: playerID, Raw: ctx.Request.Body()})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) save(c context.Context, ctx *app.RequestContext) {
	playerID, err := h.requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp, err := h.SaveUC.Execute(c, save.Request{PlayerID: playerID})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) reset(c context.Context, ctx *app.RequestContext) {
	playerID, err := h.requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp, err := h.ResetUC.Execute(c, save.Request{PlayerID: playerID})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	playerID, err := h.requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var limit, occurredFrom, occurredTo int64
	for _, q := range []struct {
		name string
		dst  *int64
	}{
		{"limit", &limit},
		{"occurred_from", &occurredFrom},
		{"occurred_to", &occurredTo},
	} {
		if *q.dst, err = queryInt64(ctx, q.name); err != nil {
			writeError(ctx, err)
			return
		}
	}
	if limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		PlayerID:     playerID,
		Limit:        int(limit),
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

var ErrInvalidQuery = errors.New("invalid query parameter")

// queryInt64 reads an optional integer query parameter; absent means 0.
func queryInt64(ctx *app.RequestContext, name string) (int64, error) {
	raw := strings.TrimSpace(string(ctx.Query(name)))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidQuery, name, raw)
	}
	return n, nil
}

func (h Handler) closeSession(c context.Context, ctx *app.RequestContext) {
	playerID, err := h.requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp, err := h.CloseUC.Execute(c, save.Request{PlayerID: playerID})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

var ErrMissingBearerToken = errors.New("missing bearer token")

func (h Handler) requirePlayer(ctx *app.RequestContext) (string, error) {
	raw := strings.TrimSpace(string(ctx.GetHeader(authorizationHeader)))
	scheme, token, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingBearerToken
	}
	return h.Tokens.Parse(token)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrMissingBearerToken):
		writeErrorBody(ctx, consts.StatusUnauthorized, "missing_token", err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_token", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_player_credentials", err.Error())
	case errors.Is(err, economy.ErrUnknownUpgrade):
		writeErrorBody(ctx, consts.StatusBadRequest, "unknown_upgrade", err.Error())
	case errors.Is(err, save.ErrInvalidSnapshot):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_snapshot", err.Error())
	case errors.Is(err, action.ErrInvalidRequest),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, auth.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, save.ErrInvalidRequest),
		errors.Is(err, status.ErrInvalidRequest),
		errors.Is(err, tick.ErrInvalidRequest),
		errors.Is(err, session.ErrInvalidPlayer):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ports.ErrUnavailable):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "store_unavailable", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
