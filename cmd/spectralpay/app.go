package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Rampop01/spectralpay/internal/binding"
	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/cli"
	"github.com/Rampop01/spectralpay/internal/config"
	"github.com/Rampop01/spectralpay/internal/contracts"
	"github.com/Rampop01/spectralpay/internal/errors"
	"github.com/Rampop01/spectralpay/internal/metrics"
	"github.com/Rampop01/spectralpay/internal/session"
	"github.com/Rampop01/spectralpay/internal/simchain"
	"github.com/Rampop01/spectralpay/pkg/logger"
)

type options struct {
	simulate bool
	stdout   io.Writer
	stderr   io.Writer
}

// app wires configuration, the chain, the session and the operation sets.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	client   *chain.Client
	sim      *simchain.Chain
	invoker  chain.Invoker
	sessions *session.Manager

	market   *binding.Marketplace
	pseudo   *binding.Registry
	verifier *binding.Verifier
	escrow   *binding.EscrowOps

	out    io.Writer
	errOut io.Writer
	status *cli.Status
}

func newApp(ctx context.Context, cfg *config.Config, opts options) (*app, error) {
	lc := cfg.LoggerConfig()
	lc.Output = opts.stderr
	a := &app{
		cfg:      cfg,
		log:      logger.New("spectralpay", lc),
		registry: prometheus.NewRegistry(),
		sessions: session.NewManager(),
		out:      opts.stdout,
		errOut:   opts.stderr,
		status:   cli.NewStatus(opts.stderr),
	}
	a.metrics = metrics.New(a.registry)

	account, err := a.account(opts.simulate)
	if err != nil {
		return nil, err
	}

	network := cfg.Network
	addrs := cfg.Addresses()
	if opts.simulate {
		a.sim = simchain.New(simchain.WithAddresses(addrs))
		a.invoker = a.sim
	} else {
		if a.client, err = chain.NewClient(cfg.ChainConfig()); err != nil {
			return nil, errors.Wrap(errors.KindInternal, "new_client", err)
		}
		a.invoker = a.client
		if account != nil {
			// Bind the session to the network the node reports.
			v, err := a.client.GetVersion(ctx)
			if err != nil {
				return nil, errors.Classify("get_version", err)
			}
			a.client.SetNetworkID(v.Network)
			network = chain.NetworkName(v.Network)
		}
	}
	if account != nil {
		a.sessions.Connect(account, network)
		a.log.WithFields(map[string]interface{}{
			"account": config.FormatAddress(account.Address()),
			"network": network,
		}).Debug("session connected")
	}

	deps := binding.Deps{
		Invoker:   a.invoker,
		Addresses: addrs,
		Sessions:  a.sessions,
		Network:   cfg.Network,
		Logger:    a.log.Named("binding"),
		Metrics:   a.metrics,
	}
	a.market = binding.NewMarketplace(deps)
	a.pseudo = binding.NewRegistry(deps)
	a.verifier = binding.NewVerifier(deps)
	a.escrow = binding.NewEscrow(deps)
	return a, nil
}

// account loads the signing key. Without one, simulated runs get a fresh
// account and live runs stay disconnected.
func (a *app) account(simulate bool) (*chain.Account, error) {
	if a.cfg.PrivateKey != "" {
		acc, err := chain.AccountFromPrivateKey(a.cfg.PrivateKey)
		if err != nil {
			return nil, errors.Wrap(errors.KindValidation, "load_account", err)
		}
		return acc, nil
	}
	if simulate {
		acc, err := chain.NewAccount()
		if err != nil {
			return nil, errors.Wrap(errors.KindInternal, "new_account", err)
		}
		return acc, nil
	}
	return nil, nil
}

// exec runs one command line.
func (a *app) exec(ctx context.Context, args []string) error {
	cmd, ok := lookupCommand(args[0])
	if !ok {
		return errors.Newf(errors.KindValidation, "cli", "unknown command %q", args[0])
	}
	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	runCmd := cmd.setup(a, fs)
	if err := fs.Parse(args[1:]); err != nil {
		return errors.Wrap(errors.KindValidation, cmd.name, err)
	}

	result, err := runCmd(ctx)
	if err != nil {
		return err
	}
	return a.print(result)
}

func (a *app) print(v interface{}) error {
	if v == nil {
		return nil
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// txResult is what mutating commands print.
type txResult struct {
	TxHash   string `json:"tx_hash"`
	Explorer string `json:"explorer,omitempty"`
}

func (a *app) tx(hash string) txResult {
	r := txResult{TxHash: hash}
	if a.sim == nil {
		r.Explorer = a.cfg.ExplorerURL(hash, config.KindTransaction)
	}
	return r
}

type stepResult struct {
	Name     string `json:"name"`
	TxHash   string `json:"tx_hash,omitempty"`
	Error    string `json:"error,omitempty"`
	Explorer string `json:"explorer,omitempty"`
}

func (a *app) step(s binding.Step) stepResult {
	r := stepResult{Name: s.Name, TxHash: s.TxHash}
	if s.Err != nil {
		r.Error = errors.UserMessage(s.Err)
	}
	if s.OK() && a.sim == nil {
		r.Explorer = a.cfg.ExplorerURL(s.TxHash, config.KindTransaction)
	}
	return r
}

// twoStep reports a primary transaction and its follow-up step, warning when
// only the first one went through.
func (a *app) twoStep(hash string, s binding.Step, retry string) interface{} {
	if !s.OK() {
		a.status.Warning(fmt.Sprintf("%s succeeded but %s failed: %s; run %q to finish",
			hash, s.Name, errors.UserMessage(s.Err), retry))
	}
	return struct {
		txResult
		Step stepResult `json:"follow_up"`
	}{a.tx(hash), a.step(s)}
}

// receipt waits for a transaction to be executed.
func (a *app) receipt(ctx context.Context, hash string, wait time.Duration) (interface{}, error) {
	if a.sim != nil {
		tx, ok := a.sim.Transaction(hash)
		if !ok {
			return nil, errors.Newf(errors.KindNotFound, "receipt", "transaction %s not found", hash)
		}
		return tx, nil
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	sp := cli.NewSpinner(a.errOut, "waiting for "+config.FormatAddress(hash))
	sp.Start()
	defer sp.Stop()

	log, err := a.client.WaitForApplicationLog(ctx, hash, chain.DefaultPollInterval)
	if err != nil {
		return nil, errors.Classify("receipt", err)
	}
	return struct {
		*chain.ApplicationLog
		Explorer string `json:"explorer"`
	}{log, a.cfg.ExplorerURL(hash, config.KindTransaction)}, nil
}

func (a *app) probe(ctx context.Context) ([]contracts.ContractStatus, error) {
	sess, err := a.sessions.Current()
	if err != nil {
		return nil, err
	}
	return contracts.Probe(ctx, a.invoker, sess, a.cfg.Addresses(),
		contracts.WithLogger(a.log.Named("probe")), contracts.WithMetrics(a.metrics)), nil
}

// dumpMetrics prints counter and gauge values as name{labels} value lines.
func (a *app) dumpMetrics(w io.Writer) {
	families, err := a.registry.Gather()
	if err != nil {
		a.log.WithError(err).Warn("gather metrics")
		return
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for i, lp := range m.GetLabel() {
				if i > 0 {
					labels += ","
				}
				labels += fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue())
			}
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), labels, value))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
