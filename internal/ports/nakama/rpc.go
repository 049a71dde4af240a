package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"darts/internal/app"
	"darts/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

type rpcFunc = func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// rpcHandlers binds the Nakama RPC surface to one shared match service.
type rpcHandlers struct {
	service *app.Service
	voice   *app.VoiceService
}

type matchRequest struct {
	MatchID string `json:"match_id"`
}

type createRequest struct {
	StartingScore int `json:"starting_score"`
}

type editRequest struct {
	MatchID       string `json:"match_id"`
	StartingScore int    `json:"starting_score"`
}

type scoreRequest struct {
	MatchID string         `json:"match_id"`
	Throws  []domain.Throw `json:"throws"`
}

type listRequest struct {
	State string `json:"state"`
}

type voiceRequest struct {
	MatchID string `json:"match_id"`
	Action  string `json:"action"`
}

func (h *rpcHandlers) register(initializer runtime.Initializer) error {
	rpcs := map[string]rpcFunc{
		RpcMatchCreate: h.matchCreate,
		RpcMatchJoin:   h.matchJoin,
		RpcMatchStart:  h.matchStart,
		RpcMatchEdit:   h.matchEdit,
		RpcMatchDelete: h.matchDelete,
		RpcMatchScore:  h.matchScore,
		RpcMatchSettle: h.matchSettle,
		RpcMatchList:   h.matchList,
		RpcVoiceToken:  h.voiceToken,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

func (h *rpcHandlers) matchCreate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	req := createRequest{StartingScore: int(domain.Score501)}
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}

	matchID, err := h.service.Create(ctx, userID, domain.StartingScore(req.StartingScore))
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchCreate, err)
	}
	logger.Info("%s [User:%s]: Created match %s", RpcMatchCreate, userID, matchID)
	return encodeResponse(map[string]string{"match_id": matchID})
}

func (h *rpcHandlers) matchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := matchCall(ctx, payload)
	if err != nil {
		return "", err
	}
	view, err := h.service.Join(ctx, req.MatchID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchJoin, err)
	}
	return encodeResponse(view)
}

func (h *rpcHandlers) matchStart(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := matchCall(ctx, payload)
	if err != nil {
		return "", err
	}
	view, err := h.service.Start(ctx, req.MatchID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchStart, err)
	}
	logger.Info("%s [User:%s]: Started match %s", RpcMatchStart, userID, req.MatchID)
	return encodeResponse(view)
}

func (h *rpcHandlers) matchEdit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	var req editRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	if req.MatchID == "" {
		return "", errMissingMatchID
	}
	view, err := h.service.EditType(ctx, req.MatchID, userID, domain.StartingScore(req.StartingScore))
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchEdit, err)
	}
	return encodeResponse(view)
}

func (h *rpcHandlers) matchDelete(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := matchCall(ctx, payload)
	if err != nil {
		return "", err
	}
	if err := h.service.Delete(ctx, req.MatchID, userID); err != nil {
		return "", toRuntimeError(logger, RpcMatchDelete, err)
	}
	logger.Info("%s [User:%s]: Deleted match %s", RpcMatchDelete, userID, req.MatchID)
	return encodeResponse(map[string]bool{"deleted": true})
}

func (h *rpcHandlers) matchScore(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	var req scoreRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	if req.MatchID == "" {
		return "", errMissingMatchID
	}
	outcome, err := h.service.RecordRound(ctx, req.MatchID, userID, req.Throws)
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchScore, err)
	}
	if outcome.Ended {
		logger.Info("%s [User:%s]: Checked out match %s", RpcMatchScore, userID, req.MatchID)
	}
	return encodeResponse(outcome)
}

func (h *rpcHandlers) matchSettle(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := matchCall(ctx, payload)
	if err != nil {
		return "", err
	}
	if err := h.service.Settle(ctx, req.MatchID, userID); err != nil {
		return "", toRuntimeError(logger, RpcMatchSettle, err)
	}
	return encodeResponse(map[string]bool{"settled": true})
}

func (h *rpcHandlers) matchList(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	if _, err := callerID(ctx); err != nil {
		return "", err
	}
	req := listRequest{State: string(domain.StateJoinable)}
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	state, err := domain.ParseState(req.State)
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchList, err)
	}
	listing, err := h.service.List(ctx, state)
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchList, err)
	}
	return encodeResponse(listing)
}

func (h *rpcHandlers) voiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	if !h.voice.Configured() {
		return "", errVoiceDisabled
	}
	req := voiceRequest{Action: app.VoiceActionLogin}
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}

	switch req.Action {
	case app.VoiceActionLogin:
		token, err := h.voice.LoginToken(userID)
		if err != nil {
			logger.Error("%s [User:%s]: Failed to generate voice token: %v", RpcVoiceToken, userID, err)
			return "", errInternal
		}
		return encodeResponse(map[string]string{"token": token})
	case app.VoiceActionJoin:
		if req.MatchID == "" {
			return "", errMissingMatchID
		}
		channel, err := h.service.VoiceChannel(req.MatchID, userID)
		if err != nil {
			return "", toRuntimeError(logger, RpcVoiceToken, err)
		}
		token, err := h.voice.JoinToken(userID, channel)
		if err != nil {
			logger.Error("%s [User:%s]: Failed to generate voice token: %v", RpcVoiceToken, userID, err)
			return "", errInternal
		}
		return encodeResponse(map[string]string{"token": token, "channel": channel.Name()})
	default:
		return "", errInvalidPayload
	}
}

func callerID(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", errUnauthenticated
	}
	return userID, nil
}

// matchCall reads the caller and a {"match_id"} payload.
func matchCall(ctx context.Context, payload string) (string, matchRequest, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", matchRequest{}, err
	}
	var req matchRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", matchRequest{}, err
	}
	if req.MatchID == "" {
		return "", matchRequest{}, errMissingMatchID
	}
	return userID, req, nil
}

// decodePayload unmarshals a JSON payload into dst. An empty payload leaves
// dst untouched.
func decodePayload(payload string, dst interface{}) error {
	if payload == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return errInvalidPayload
	}
	return nil
}

func encodeResponse(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errInternal
	}
	return string(b), nil
}
