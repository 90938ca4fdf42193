package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/entitlement-gateway/internal/functions"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// CreateSubscription оформляет подписку на planID и затем сверяет состояние.
// При ошибке Store не меняется.
func (r *Reconciler) CreateSubscription(ctx context.Context, identity models.UserIdentity, planID, paymentMethodID string) (models.EntitlementSnapshot, error) {
	const op = "reconciler.CreateSubscription"
	log := r.log.With(slog.String("op", op), sl.UID(identity.UID), slog.String("plan_id", planID))

	if identity.UID == "" {
		return r.fail(ActionCreate, newMutationError(ActionCreate, KindUnauthenticated, "", nil))
	}
	plan, ok := r.catalog.Lookup(planID)
	if !ok {
		return r.fail(ActionCreate, newMutationError(ActionCreate, KindInvalidArgument, "unknown plan: "+planID, nil))
	}
	if paymentMethodID == "" {
		return r.fail(ActionCreate, newMutationError(ActionCreate, KindInvalidArgument, "payment method is required", nil))
	}

	ctx = context.WithoutCancel(ctx)
	unlock := r.locks.Lock(identity.UID)
	defer unlock()

	resp, err := r.remote.CreateSubscription(ctx, functions.CreateSubscriptionRequest{
		PlanID:          plan.ID,
		PaymentMethodID: paymentMethodID,
		CustomerEmail:   identity.Email,
	})
	if err != nil {
		log.Warn("create subscription failed", sl.Err(err))
		return r.fail(ActionCreate, fromCall(ActionCreate, err))
	}
	log.Info("subscription created", slog.String("subscription_id", resp.SubscriptionID))

	snap := r.afterMutation(ctx, identity)
	r.publishReceipt(ctx, log, identity, plan, resp.SubscriptionID)
	r.succeed(ActionCreate)
	return snap, nil
}

// CancelSubscription отключает продление. Доступ сохраняется до конца
// оплаченного периода. Повторная отмена не является ошибкой.
func (r *Reconciler) CancelSubscription(ctx context.Context, identity models.UserIdentity) (models.EntitlementSnapshot, error) {
	const op = "reconciler.CancelSubscription"
	log := r.log.With(slog.String("op", op), sl.UID(identity.UID))

	if identity.UID == "" {
		return r.fail(ActionCancel, newMutationError(ActionCancel, KindUnauthenticated, "", nil))
	}

	ctx = context.WithoutCancel(ctx)
	unlock := r.locks.Lock(identity.UID)
	defer unlock()

	if err := r.remote.CancelSubscription(ctx); err != nil {
		log.Warn("cancel subscription failed", sl.Err(err))
		return r.fail(ActionCancel, fromCall(ActionCancel, err))
	}
	log.Info("subscription canceled")

	snap := r.afterMutation(ctx, identity)
	r.succeed(ActionCancel)
	return snap, nil
}

// ToggleAutoRenew включает или отключает автопродление.
func (r *Reconciler) ToggleAutoRenew(ctx context.Context, identity models.UserIdentity, enabled bool) (models.EntitlementSnapshot, error) {
	const op = "reconciler.ToggleAutoRenew"
	log := r.log.With(slog.String("op", op), sl.UID(identity.UID), slog.Bool("auto_renew", enabled))

	if identity.UID == "" {
		return r.fail(ActionToggleAutoRenew, newMutationError(ActionToggleAutoRenew, KindUnauthenticated, "", nil))
	}

	ctx = context.WithoutCancel(ctx)
	unlock := r.locks.Lock(identity.UID)
	defer unlock()

	if err := r.remote.ToggleAutoRenew(ctx, enabled); err != nil {
		log.Warn("toggle auto-renew failed", sl.Err(err))
		return r.fail(ActionToggleAutoRenew, fromCall(ActionToggleAutoRenew, err))
	}

	snap := r.afterMutation(ctx, identity)
	r.succeed(ActionToggleAutoRenew)
	return snap, nil
}

// afterMutation сбрасывает кэш записи и сверяет состояние под уже
// захваченной блокировкой, не присоединяясь к идущим сверкам: их ответ
// мог быть получен до мутации.
func (r *Reconciler) afterMutation(ctx context.Context, identity models.UserIdentity) models.EntitlementSnapshot {
	if r.records != nil {
		r.records.Invalidate(ctx, identity.UID)
	}
	return r.reconcile(ctx, identity).Clone()
}

// publishReceipt ставит квитанцию в очередь. Ошибка не влияет на результат покупки.
func (r *Reconciler) publishReceipt(ctx context.Context, log *slog.Logger, identity models.UserIdentity, plan models.SubscriptionPlan, transactionID string) {
	if r.receipts == nil || identity.Email == "" {
		return
	}
	req := models.ReceiptRequest{
		MessageID: uuid.NewString(),
		Email:     identity.Email,
		PurchaseDetails: models.PurchaseDetails{
			Amount:        plan.PriceMinorUnits(),
			TransactionID: transactionID,
			PurchaseDate:  r.now().UTC().Format(time.RFC3339),
			ProductName:   plan.Name,
			Description:   plan.Description,
		},
	}
	if err := r.receipts.PublishReceipt(ctx, req); err != nil {
		log.Error("failed to publish receipt", sl.Err(err))
	}
}

func (r *Reconciler) fail(action Action, err *MutationError) (models.EntitlementSnapshot, error) {
	if r.metrics != nil {
		r.metrics.ObserveMutation(string(action), string(err.Kind))
	}
	return models.EntitlementSnapshot{}, err
}

func (r *Reconciler) succeed(action Action) {
	if r.metrics != nil {
		r.metrics.ObserveMutation(string(action), "")
	}
}
