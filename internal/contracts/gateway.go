// Package contracts provides typed gateways for the job marketplace,
// pseudonym registry, ZK verifier and escrow contracts.
package contracts

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/errors"
	"github.com/Rampop01/spectralpay/internal/metrics"
	"github.com/Rampop01/spectralpay/internal/session"
	"github.com/Rampop01/spectralpay/pkg/logger"
)

// Contract names used in logs and metrics.
const (
	NameJobMarketplace    = "job_marketplace"
	NamePseudonymRegistry = "pseudonym_registry"
	NameZKVerifier        = "zk_verifier"
	NameEscrow            = "escrow"
)

// Option configures a gateway.
type Option func(*base)

// WithLogger sets the gateway logger.
func WithLogger(l *logger.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.log = l
		}
	}
}

// WithMetrics sets the gateway metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) { b.metrics = m }
}

// base is shared by all gateways. A gateway built without a connected
// session or without a contract hash fails every call before touching the
// chain.
type base struct {
	name    string
	invoker chain.Invoker
	hash    string
	sess    *session.Session
	log     *logger.Logger
	metrics *metrics.Metrics
}

func newBase(name string, invoker chain.Invoker, hash string, sess *session.Session, opts []Option) base {
	b := base{
		name:    name,
		invoker: invoker,
		hash:    hash,
		sess:    sess,
		log:     logger.NewDefault("contracts"),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// ContractHash returns the contract script hash the gateway targets.
func (b *base) ContractHash() string {
	return b.hash
}

// Session returns the session the gateway was built with.
func (b *base) Session() *session.Session {
	return b.sess
}

func (b *base) ready(method string) error {
	if !b.sess.Connected() || b.invoker == nil {
		return errors.NotConnected(method)
	}
	if b.hash == "" {
		return errors.Newf(errors.KindNotFound, method, "%s contract address not configured", b.name)
	}
	return nil
}

// call runs a read-only method and returns the top stack item.
func (b *base) call(ctx context.Context, method string, params []chain.ContractParam) (chain.StackItem, error) {
	if err := b.ready(method); err != nil {
		return chain.StackItem{}, err
	}

	start := time.Now()
	res, err := b.invoker.InvokeFunction(ctx, b.hash, method, params)
	if err != nil {
		return chain.StackItem{}, b.fail(ctx, method, start, err)
	}
	item, err := res.First(method)
	if err != nil {
		var fault *chain.FaultError
		if !stderrors.As(err, &fault) {
			err = errors.Wrap(errors.KindDecode, method, err)
		}
		return chain.StackItem{}, b.fail(ctx, method, start, err)
	}

	b.metrics.RecordGatewayCall(b.name, method, "ok", time.Since(start))
	return item, nil
}

// submit sends a signed transaction and returns its hash. The transaction
// is only accepted for inclusion; callers must re-read state to observe it.
func (b *base) submit(ctx context.Context, method string, params []chain.ContractParam) (string, error) {
	if err := b.ready(method); err != nil {
		return "", err
	}

	start := time.Now()
	txHash, err := b.invoker.Submit(ctx, b.sess.Account(), b.hash, method, params)
	if err != nil {
		return "", b.fail(ctx, method, start, err)
	}

	b.metrics.RecordGatewayCall(b.name, method, "ok", time.Since(start))
	b.log.WithContext(ctx).WithFields(map[string]interface{}{
		"contract": b.name,
		"method":   method,
		"tx_hash":  txHash,
	}).Info("transaction submitted")
	return txHash, nil
}

// decodeFailed records a response that could not be decoded.
func (b *base) decodeFailed(ctx context.Context, method string, err error) error {
	e := errors.Classify(method, err)
	if e.Kind == errors.KindTransport || e.Kind == errors.KindInternal {
		e = errors.Wrap(errors.KindDecode, method, err)
	}
	b.log.WithContext(ctx).WithError(e).WithFields(map[string]interface{}{
		"contract": b.name,
		"method":   method,
		"kind":     string(e.Kind),
	}).Error("decode contract response")
	return e
}

func (b *base) fail(ctx context.Context, method string, start time.Time, err error) error {
	var e *errors.Error
	var fault *chain.FaultError
	if stderrors.As(err, &fault) {
		e = errors.ClassifyFault(method, fault.Exception)
	} else {
		e = errors.Classify(method, err)
	}

	b.metrics.RecordGatewayCall(b.name, method, string(e.Kind), time.Since(start))
	b.log.WithContext(ctx).WithError(e).WithFields(map[string]interface{}{
		"contract": b.name,
		"method":   method,
		"kind":     string(e.Kind),
	}).Error("contract call failed")
	return e
}

// send checks the session, then reports any encoding error, then submits.
func (b *base) send(ctx context.Context, method string, l *paramList) (string, error) {
	if err := b.ready(method); err != nil {
		return "", err
	}
	if l.err != nil {
		return "", errors.Classify(method, l.err)
	}
	return b.submit(ctx, method, l.params)
}

// query checks the session, then reports any encoding error, then calls.
func (b *base) query(ctx context.Context, method string, l *paramList) (chain.StackItem, error) {
	if err := b.ready(method); err != nil {
		return chain.StackItem{}, err
	}
	if l.err != nil {
		return chain.StackItem{}, errors.Classify(method, l.err)
	}
	return b.call(ctx, method, l.params)
}

func (b *base) queryBool(ctx context.Context, method string, l *paramList) (bool, error) {
	item, err := b.query(ctx, method, l)
	if err != nil {
		return false, err
	}
	ok, err := chain.ParseBoolean(item)
	if err != nil {
		return false, b.decodeFailed(ctx, method, err)
	}
	return ok, nil
}
