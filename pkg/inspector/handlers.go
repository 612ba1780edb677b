package inspector

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-sync/pkg/addressbook"
	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	apphttp "github.com/chainsafe/wallet-sync/pkg/app/http"
	"github.com/chainsafe/wallet-sync/pkg/presenter"
	"github.com/chainsafe/wallet-sync/pkg/syncstatus"
	"github.com/chainsafe/wallet-sync/pkg/tokenlist"
	"github.com/chainsafe/wallet-sync/pkg/txcache"
)

type syncResponse struct {
	Status *syncstatus.Status `json:"status"`
	Data   json.RawMessage    `json:"data,omitempty"`
}

func (h *HTTP) syncStatus(w http.ResponseWriter, r *http.Request) error {
	chainID, err := pathChainID(r)
	if err != nil {
		return err
	}
	key := syncstatus.Key{
		Type:    chi.URLParam(r, "type"),
		Address: chi.URLParam(r, "address"),
		ChainID: chainID,
	}

	status, err := h.data.SyncStatus.Status(r.Context(), key)
	if err != nil {
		return err
	}
	if status == nil {
		return apperrors.ResourceNotFoundError(nil, fmt.Sprintf("no sync status for %s", key))
	}
	data, err := h.data.SyncStatus.CachedData(r.Context(), key)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &syncResponse{Status: status, Data: data})
	return nil
}

func (h *HTTP) balances(w http.ResponseWriter, r *http.Request) error {
	balances, err := h.data.Balances.GetBalances(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, balances)
	return nil
}

func (h *HTTP) portfolio(w http.ResponseWriter, r *http.Request) error {
	chainID, err := pathChainID(r)
	if err != nil {
		return err
	}
	address := chi.URLParam(r, "address")

	snapshot, err := h.data.Balances.GetBalance(r.Context(), address, chainID)
	if err != nil {
		return err
	}
	tokens, err := h.data.Tokens.GetVisibleTokens(r.Context(), chainID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, presenter.Portfolio(snapshot, tokens))
	return nil
}

func (h *HTTP) tokens(w http.ResponseWriter, r *http.Request) error {
	chainID, err := pathChainID(r)
	if err != nil {
		return err
	}
	view := tokenlist.ViewVisible
	if v := r.URL.Query().Get("view"); v != "" {
		view = tokenlist.View(v)
	}

	tokens, err := h.data.Tokens.GetTokens(r.Context(), chainID, view)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, tokens)
	return nil
}

func (h *HTTP) transactions(w http.ResponseWriter, r *http.Request) error {
	opts, err := transactionOptions(r)
	if err != nil {
		return err
	}
	txs, err := h.data.Transactions.GetByAddress(r.Context(), chi.URLParam(r, "address"), opts...)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, txs)
	return nil
}

func (h *HTTP) activity(w http.ResponseWriter, r *http.Request) error {
	opts, err := transactionOptions(r)
	if err != nil {
		return err
	}
	address := chi.URLParam(r, "address")
	txs, err := h.data.Transactions.GetByAddress(r.Context(), address, opts...)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, presenter.Activity(address, txs, nil))
	return nil
}

func (h *HTTP) contacts(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	if search := q.Get("q"); search != "" {
		contacts, err := h.data.AddressBook.SearchContacts(r.Context(), search)
		if err != nil {
			return err
		}
		apphttp.WriteJSON(w, http.StatusOK, contacts)
		return nil
	}

	var opts []addressbook.ListOption
	if q.Get("favorites") == "true" {
		opts = append(opts, addressbook.FavoritesOnly())
	}
	if raw := q.Get("chain_id"); raw != "" {
		chainID, err := parseChainID(raw)
		if err != nil {
			return err
		}
		opts = append(opts, addressbook.OnChain(chainID))
	}

	contacts, err := h.data.AddressBook.ListContacts(r.Context(), opts...)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, contacts)
	return nil
}

// sessions sweeps expired sessions before listing, since expiry is only
// evaluated on demand.
func (h *HTTP) sessions(w http.ResponseWriter, r *http.Request) error {
	expired, err := h.data.WalletConnect.MarkExpiredSessions(r.Context())
	if err != nil {
		return err
	}
	if expired > 0 {
		h.logger.Info("expired walletconnect sessions", zap.Int64("count", expired))
	}

	sessions, err := h.data.WalletConnect.GetActiveSessions(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, sessions)
	return nil
}

func (h *HTTP) pendingRequests(w http.ResponseWriter, r *http.Request) error {
	requests, err := h.data.WalletConnect.GetPendingRequests(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, requests)
	return nil
}

type preferenceResponse struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (h *HTTP) preference(w http.ResponseWriter, r *http.Request) error {
	key := chi.URLParam(r, "key")
	value, err := h.data.Preferences.Get(r.Context(), key)
	if err != nil {
		return err
	}
	if value == nil {
		return apperrors.ResourceNotFoundError(nil, fmt.Sprintf("preference %s not set", key))
	}
	apphttp.WriteJSON(w, http.StatusOK, &preferenceResponse{Key: key, Value: value})
	return nil
}

func (h *HTTP) prune(w http.ResponseWriter, r *http.Request) error {
	res, err := h.data.Prune(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, res)
	return nil
}

func (h *HTTP) wipe(w http.ResponseWriter, r *http.Request) error {
	res, err := h.data.Wipe(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, res)
	return nil
}

func transactionOptions(r *http.Request) ([]txcache.QueryOption, error) {
	q := r.URL.Query()
	var opts []txcache.QueryOption

	if raw := q.Get("chain_id"); raw != "" {
		chainID, err := parseChainID(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, txcache.WithChainID(chainID))
	}
	if raw := q.Get("status"); raw != "" {
		status := txcache.Status(raw)
		if !status.Valid() {
			return nil, apperrors.BadRequestError(nil, fmt.Sprintf("invalid status %q", raw))
		}
		opts = append(opts, txcache.WithStatus(status))
	}
	if raw := q.Get("type"); raw != "" {
		txType := txcache.Type(raw)
		if !txType.Valid() {
			return nil, apperrors.BadRequestError(nil, fmt.Sprintf("invalid type %q", raw))
		}
		opts = append(opts, txcache.WithType(txType))
	}
	for name, apply := range map[string]func(int) txcache.QueryOption{
		"limit":  txcache.WithLimit,
		"offset": txcache.WithOffset,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.BadRequestError(err, fmt.Sprintf("invalid %s %q", name, raw))
		}
		opts = append(opts, apply(n))
	}
	return opts, nil
}

func pathChainID(r *http.Request) (int64, error) {
	return parseChainID(chi.URLParam(r, "chainID"))
}

func parseChainID(raw string) (int64, error) {
	chainID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || chainID <= 0 {
		return 0, apperrors.BadRequestError(err, fmt.Sprintf("invalid chain id %q", raw))
	}
	return chainID, nil
}
