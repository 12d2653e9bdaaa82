package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/calehh/hac-market/hasher"
	"github.com/calehh/hac-market/types"
	"github.com/calehh/hac-market/validation"
)

var (
	KeyMarketBody    = "m%v"
	KeyMarketIndex   = "mi"
	KeyProfileBody   = "p%v"
	KeyProfileIndex  = "pi"
	KeyTemplateBody  = "t%v"
	KeyTemplateIndex = "ti"
)

const (
	ModelMarket    = "Market"
	ModelProfile   = "Profile"
	ModelTemplate  = "ListingItemTemplate"
	ModelItemPrice = "ItemPrice"
)

var ErrPaymentAddressAttached = errors.New("payment address already attached")

// StateDB persists markets, profiles and listing templates in an iavl tree.
// Every write commits a new version.
type StateDB struct {
	mtx sync.RWMutex

	dir    string
	logger cmtlog.Logger
	db     *iavl.MutableTree
}

func NewStateDB(dir string, logger cmtlog.Logger) (db *StateDB, err error) {
	ldb, err := dbm.NewDB("market", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	db, err = newStateDB(ldb, logger)
	if err != nil {
		return nil, err
	}
	db.dir = dir
	return
}

// NewMemStateDB keeps the tree in memory.
func NewMemStateDB(logger cmtlog.Logger) (db *StateDB, err error) {
	return newStateDB(dbm.NewMemDB(), logger)
}

func newStateDB(ldb dbm.DB, logger cmtlog.Logger) (db *StateDB, err error) {
	logger = logger.With("module", "marketdb")
	tdb := iavl.NewMutableTree(ldb, 128, true, Cometbft2CosmosLogger(logger))
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	db = &StateDB{
		logger: logger,
		db:     tdb,
	}
	return
}

func (db *StateDB) Close() (err error) {
	err = db.db.Close()
	return
}

// Version is the last committed tree version.
func (db *StateDB) Version() int64 {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.db.Version()
}

func (db *StateDB) get(key string, v any) (found bool, err error) {
	val, err := db.db.Get([]byte(key))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	if val == nil {
		return false, nil
	}
	err = json.Unmarshal(val, v)
	return err == nil, err
}

func (db *StateDB) set(key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = db.db.Set([]byte(key), val)
	return err
}

func (db *StateDB) nextIndex(key string) (idx uint64, err error) {
	val, err := db.db.Get([]byte(key))
	if err != nil && err != leveldb.ErrNotFound {
		return 0, err
	}
	idx = new(big.Int).SetBytes(val).Uint64() + 1
	_, err = db.db.Set([]byte(key), new(big.Int).SetUint64(idx).Bytes())
	return
}

func (db *StateDB) commit() error {
	hash, ver, err := db.db.SaveVersion()
	if err != nil {
		db.logger.Error("save version fail", "err", err)
		return err
	}
	db.logger.Debug("commit", "version", ver, "hash", fmt.Sprintf("%X", hash))
	return nil
}

func (db *StateDB) AddProfile(p *types.Profile) (id uint64, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	id, err = db.nextIndex(KeyProfileIndex)
	if err != nil {
		return
	}
	np := *p
	np.ID = id
	if err = db.set(fmt.Sprintf(KeyProfileBody, id), &np); err != nil {
		return
	}
	err = db.commit()
	return
}

func (db *StateDB) FindProfile(id uint64) (p *types.Profile, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	p = new(types.Profile)
	found, err := db.get(fmt.Sprintf(KeyProfileBody, id), p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &types.ModelNotFoundError{Model: ModelProfile}
	}
	return
}

func (db *StateDB) AddMarket(m *types.Market) (id uint64, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	id, err = db.nextIndex(KeyMarketIndex)
	if err != nil {
		return
	}
	nm := *m
	nm.ID = id
	if err = db.set(fmt.Sprintf(KeyMarketBody, id), &nm); err != nil {
		return
	}
	err = db.commit()
	return
}

func (db *StateDB) FindMarket(id uint64) (m *types.Market, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	m = new(types.Market)
	found, err := db.get(fmt.Sprintf(KeyMarketBody, id), m)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &types.ModelNotFoundError{Model: ModelMarket}
	}
	return
}

// AddTemplate stores a new draft. Ids, timestamps and the hash are assigned
// here and never taken from the input.
func (db *StateDB) AddTemplate(t *types.ListingTemplate) (nt *types.ListingTemplate, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	id, err := db.nextIndex(KeyTemplateIndex)
	if err != nil {
		return
	}
	now := time.Now().UTC()
	nt = cloneTemplate(t)
	nt.ID = id
	nt.Hash = ""
	nt.CreatedAt = now
	nt.UpdatedAt = now
	if err = db.set(fmt.Sprintf(KeyTemplateBody, id), nt); err != nil {
		return nil, err
	}
	if err = db.commit(); err != nil {
		return nil, err
	}
	return
}

func (db *StateDB) findTemplate(id uint64) (t *types.ListingTemplate, err error) {
	t = new(types.ListingTemplate)
	found, err := db.get(fmt.Sprintf(KeyTemplateBody, id), t)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &types.ModelNotFoundError{Model: ModelTemplate}
	}
	return
}

func (db *StateDB) FindTemplate(id uint64) (*types.ListingTemplate, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.findTemplate(id)
}

// modifyTemplate applies fn to a stored draft and commits the result. Frozen
// drafts are refused.
func (db *StateDB) modifyTemplate(id uint64, fn func(t *types.ListingTemplate) error) (t *types.ListingTemplate, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	t, err = db.findTemplate(id)
	if err != nil {
		return nil, err
	}
	if t.Frozen() {
		return nil, &types.ModelNotModifiableError{Model: ModelTemplate}
	}
	if err = fn(t); err != nil {
		return nil, err
	}
	t.UpdatedAt = time.Now().UTC()
	if err = db.set(fmt.Sprintf(KeyTemplateBody, id), t); err != nil {
		return nil, err
	}
	if err = db.commit(); err != nil {
		return nil, err
	}
	return
}

// UpdateTemplate replaces the editable content of a draft. The hash and the
// payment address stay with the stored draft.
func (db *StateDB) UpdateTemplate(u *types.ListingTemplate) (*types.ListingTemplate, error) {
	return db.modifyTemplate(u.ID, func(t *types.ListingTemplate) error {
		addr := t.PaymentAddress()
		images := t.Images()
		n := cloneTemplate(u)
		t.ProfileID = n.ProfileID
		t.Information = n.Information
		t.Payment = n.Payment
		if t.Information != nil {
			t.Information.Images = images
		}
		if addr != nil && t.Payment != nil && t.Payment.ItemPrice != nil {
			t.Payment.ItemPrice.PaymentAddress = addr
		}
		return nil
	})
}

// AddImage appends an image to a draft, hashing its data.
func (db *StateDB) AddImage(templateID uint64, data types.ImageData) (img types.Image, err error) {
	_, err = db.modifyTemplate(templateID, func(t *types.ListingTemplate) error {
		if t.Information == nil {
			return &types.ModelNotFoundError{Model: "ItemInformation"}
		}
		var max uint64
		for _, i := range t.Information.Images {
			if i.ID > max {
				max = i.ID
			}
		}
		img = types.Image{ID: max + 1, Hash: hasher.ImageHash(data), Data: data}
		t.Information.Images = append(t.Information.Images, img)
		return nil
	})
	return
}

// AttachPaymentAddress sets the payment address of the draft's item price. An
// existing address is only overwritten when replace is set.
func (db *StateDB) AttachPaymentAddress(templateID uint64, addr types.PaymentAddress, replace bool) (*types.ListingTemplate, error) {
	return db.modifyTemplate(templateID, func(t *types.ListingTemplate) error {
		if t.Payment == nil || t.Payment.ItemPrice == nil {
			return &types.ModelNotFoundError{Model: ModelItemPrice}
		}
		if t.PaymentAddress() != nil && !replace {
			return ErrPaymentAddressAttached
		}
		a := addr
		t.Payment.ItemPrice.PaymentAddress = &a
		return nil
	})
}

// UpdateHash freezes a draft. A hash is assigned once.
func (db *StateDB) UpdateHash(templateID uint64, hash string) (*types.ListingTemplate, error) {
	return db.modifyTemplate(templateID, func(t *types.ListingTemplate) error {
		t.Hash = hash
		return nil
	})
}

func (db *StateDB) TemplateLookup() validation.LookupFunc {
	return func(ctx context.Context, id uint64) error {
		_, err := db.FindTemplate(id)
		return err
	}
}

func (db *StateDB) MarketLookup() validation.LookupFunc {
	return func(ctx context.Context, id uint64) error {
		_, err := db.FindMarket(id)
		return err
	}
}

func (db *StateDB) ProfileLookup() validation.LookupFunc {
	return func(ctx context.Context, id uint64) error {
		_, err := db.FindProfile(id)
		return err
	}
}

func cloneTemplate(t *types.ListingTemplate) *types.ListingTemplate {
	dat, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}
	n := new(types.ListingTemplate)
	if err = json.Unmarshal(dat, n); err != nil {
		panic(err)
	}
	return n
}
