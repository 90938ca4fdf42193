// Package reconciler определяет текущее состояние подписки пользователя и
// записывает его в Store сессии.
//
// Порядок источников фиксирован: сначала удалённый валидатор, при его
// недоступности последняя синхронизированная запись из хранилища. Сверка
// никогда не возвращает ошибку: если ни один источник не ответил, в Store
// попадает снимок без премиум-доступа.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/magabrotheeeer/entitlement-gateway/internal/functions"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/records"
)

// DefaultValidateTimeout ограничивает ожидание удалённого валидатора.
const DefaultValidateTimeout = 10 * time.Second

// Remote - удалённые функции подписки. Учётные данные пользователя
// передаются через контекст.
type Remote interface {
	ValidateSubscription(ctx context.Context) (*functions.ValidationResult, error)
	CreateSubscription(ctx context.Context, req functions.CreateSubscriptionRequest) (*functions.CreateSubscriptionResponse, error)
	CancelSubscription(ctx context.Context) error
	ToggleAutoRenew(ctx context.Context, enabled bool) error
}

// Records - запасной источник: последняя синхронизированная запись.
type Records interface {
	Record(ctx context.Context, userUID string) (*models.SubscriptionRecord, error)
	Invalidate(ctx context.Context, userUID string)
}

// Writer - Store сессии.
type Writer interface {
	Replace(snapshot models.EntitlementSnapshot) uint64
}

// Stores находит Store открытой сессии пользователя.
type Stores interface {
	Store(userUID string) (Writer, bool)
}

// Catalog ищет тариф по ID.
type Catalog interface {
	Lookup(id string) (models.SubscriptionPlan, bool)
}

// ReceiptPublisher ставит запрос на отправку квитанции в очередь.
type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, req models.ReceiptRequest) error
}

// Metrics учитывает сверки и мутации.
type Metrics interface {
	ObserveReconcile(source string, premium bool, elapsed time.Duration)
	ObserveMutation(action, kind string)
}

// Reconciler - единственный компонент, которому разрешено читать запись
// о подписке и писать в Store.
type Reconciler struct {
	remote   Remote
	records  Records
	stores   Stores
	catalog  Catalog
	receipts ReceiptPublisher
	metrics  Metrics
	log      *slog.Logger

	validateTimeout time.Duration
	now             func() time.Time

	inflight singleflight.Group
	locks    *keyedMutex
}

// Option настраивает Reconciler.
type Option func(*Reconciler)

// WithValidateTimeout задаёт таймаут удалённой валидации.
func WithValidateTimeout(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.validateTimeout = d
		}
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithReceipts включает отправку квитанций после покупки.
func WithReceipts(p ReceiptPublisher) Option {
	return func(r *Reconciler) { r.receipts = p }
}

// WithMetrics включает учёт метрик.
func WithMetrics(m Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// New создает Reconciler.
func New(remote Remote, recs Records, stores Stores, catalog Catalog, log *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		remote:          remote,
		records:         recs,
		stores:          stores,
		catalog:         catalog,
		log:             log,
		validateTimeout: DefaultValidateTimeout,
		now:             time.Now,
		locks:           newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile сверяет состояние подписки identity и заменяет снимок в Store.
// Параллельные вызовы для одного пользователя присоединяются к уже идущей
// сверке. Отмена ctx не прерывает сверку: результат всё равно будет записан.
func (r *Reconciler) Reconcile(ctx context.Context, identity models.UserIdentity) models.EntitlementSnapshot {
	if identity.UID == "" {
		snap := models.NoEntitlement(models.SourceAnonymous, r.now())
		r.observe(snap, 0)
		return snap
	}

	ctx = context.WithoutCancel(ctx)
	v, _, _ := r.inflight.Do(identity.UID, func() (any, error) {
		unlock := r.locks.Lock(identity.UID)
		defer unlock()
		return r.reconcile(ctx, identity), nil
	})
	snap, ok := v.(models.EntitlementSnapshot)
	if !ok {
		return models.NoEntitlement(models.SourceNone, r.now())
	}
	return snap.Clone()
}

// reconcile выполняет одну сверку. Вызывающий держит блокировку identity.
func (r *Reconciler) reconcile(ctx context.Context, identity models.UserIdentity) models.EntitlementSnapshot {
	const op = "reconciler.reconcile"
	log := r.log.With(slog.String("op", op), sl.UID(identity.UID))
	start := r.now()

	snap, err := r.fromRemote(ctx, start)
	if err != nil {
		log.Warn("remote validation failed, using persisted record", sl.Err(err))
		snap = r.fromRecord(ctx, log, identity.UID, start)
	}

	if st, ok := r.stores.Store(identity.UID); ok {
		st.Replace(snap)
	} else {
		log.Debug("no open session, snapshot not stored")
	}

	r.observe(snap, r.now().Sub(start))
	log.Debug("reconciled",
		slog.String("source", string(snap.Source)),
		slog.Bool("premium", snap.IsPremiumUser),
	)
	return snap
}

func (r *Reconciler) fromRemote(ctx context.Context, now time.Time) (models.EntitlementSnapshot, error) {
	const op = "reconciler.fromRemote"
	vctx, cancel := context.WithTimeout(ctx, r.validateTimeout)
	defer cancel()

	res, err := r.remote.ValidateSubscription(vctx)
	if errors.Is(err, functions.ErrNotFound) {
		return models.NoEntitlement(models.SourceRemote, now), nil
	}
	if err != nil {
		return models.EntitlementSnapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	rec, err := recordFromValidation(res)
	if err != nil {
		return models.EntitlementSnapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	if rec == nil {
		return models.NoEntitlement(models.SourceRemote, now), nil
	}
	return models.BuildSnapshot(*rec, models.SourceRemote, now), nil
}

// fromRecord строит снимок по сохранённой записи. Устаревшая active-запись
// читается как expired только в памяти, хранилище не меняется.
func (r *Reconciler) fromRecord(ctx context.Context, log *slog.Logger, userUID string, now time.Time) models.EntitlementSnapshot {
	if r.records == nil {
		return models.NoEntitlement(models.SourceNone, now)
	}
	rec, err := r.records.Record(ctx, userUID)
	if errors.Is(err, records.ErrNoRecord) {
		return models.NoEntitlement(models.SourceNone, now)
	}
	if err != nil {
		log.Error("persisted record unavailable, denying premium", sl.Err(err))
		return models.NoEntitlement(models.SourceNone, now)
	}

	corrected := *rec
	corrected.Status = rec.EffectiveStatus(now)
	return models.BuildSnapshot(corrected, models.SourceFallback, now)
}

// recordFromValidation переводит ответ валидатора в запись. nil без
// ошибки означает, что подписки нет.
func recordFromValidation(res *functions.ValidationResult) (*models.SubscriptionRecord, error) {
	if res == nil {
		return nil, errors.New("empty validation result")
	}
	if res.Plan == "" && !res.Active {
		return nil, nil
	}

	rec := &models.SubscriptionRecord{PlanID: res.Plan}
	switch {
	case res.Status != "":
		rec.Status = models.SubscriptionStatus(res.Status)
		if !rec.Status.Valid() {
			return nil, fmt.Errorf("unknown subscription status %q", res.Status)
		}
	case res.Active:
		rec.Status = models.StatusActive
	default:
		rec.Status = models.StatusExpired
	}
	if res.EndDate != "" {
		end, err := functions.ParseTime(res.EndDate)
		if err != nil {
			return nil, err
		}
		rec.EndDate = end
	}
	if res.AutoRenew != nil {
		rec.AutoRenew = *res.AutoRenew
	}
	return rec, nil
}

func (r *Reconciler) observe(snap models.EntitlementSnapshot, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveReconcile(string(snap.Source), snap.IsPremiumUser, elapsed)
}
