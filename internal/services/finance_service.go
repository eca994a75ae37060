package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dompet/internal/command"
	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/report"
	"dompet/internal/sheets"
)

// Oracle is the classification capability the service needs. Categorize
// never fails; InterpretQuery returns nil when no intent was found.
type Oracle interface {
	Categorize(ctx context.Context, description string, typ core.TxType) string
	InterpretQuery(ctx context.Context, text string) (*core.QueryIntent, error)
}

// Message is one inbound chat message, independent of the channel it came on.
type Message struct {
	ID     string
	Sender string
	Text   string
}

const (
	DefaultMaxRows = 1000
	// DefaultTimeout bounds one message, including both legs of a transfer.
	DefaultTimeout = 30 * time.Second
)

// FinanceService executes one chat command per message against the ledger.
// It keeps no state between messages; every balance is recomputed from the
// rows read back from the store.
type FinanceService struct {
	ledger sheets.Ledger
	oracle Oracle
	logger *log.Logger
	events *log.StructuredLogger

	now            func() time.Time
	maxRows        int
	timeout        time.Duration
	sourceTag      string
	transferSource string
}

type Option func(*FinanceService)

// WithClock sets the time source used to stamp new rows.
func WithClock(now func() time.Time) Option {
	return func(s *FinanceService) { s.now = now }
}

// WithMaxRows caps how many ledger rows are read per aggregation.
func WithMaxRows(n int) Option {
	return func(s *FinanceService) {
		if n > 0 {
			s.maxRows = n
		}
	}
}

// WithSourceTag sets the provenance written on recorded rows. Transfer legs
// get the tag with a " - Transfer" suffix.
func WithSourceTag(tag string) Option {
	return func(s *FinanceService) {
		if tag = strings.TrimSpace(tag); tag != "" {
			s.sourceTag = tag
			s.transferSource = tag + " - Transfer"
		}
	}
}

// WithTimeout bounds how long one message may spend on the ledger and oracle.
func WithTimeout(d time.Duration) Option {
	return func(s *FinanceService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *FinanceService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewFinanceService(ledger sheets.Ledger, oracle Oracle, opts ...Option) *FinanceService {
	s := &FinanceService{
		ledger:         ledger,
		oracle:         oracle,
		logger:         log.New(log.DefaultConfig()),
		now:            time.Now,
		maxRows:        DefaultMaxRows,
		timeout:        DefaultTimeout,
		sourceTag:      core.SourceTag,
		transferSource: core.TransferSource,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentFinance)
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// Handle runs the command in msg and returns the reply. ok is false when the
// message is unrelated chatter and must not be answered. A started command
// runs to completion even if ctx is cancelled, so a shutdown or a dropped
// client cannot leave a transfer with only its debit leg.
func (s *FinanceService) Handle(ctx context.Context, msg Message) (reply string, ok bool) {
	cmd := command.Classify(msg.Text)
	sender := strings.TrimSpace(msg.Sender)
	if sender == "" {
		sender = core.DefaultSender
	}

	if cmd.Kind == command.Ignore {
		return "", false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	s.logger.DebugContext(ctx, "Handling command",
		log.FieldCommand, cmd.Kind.String(),
		log.FieldSender, sender,
		log.FieldMessageID, msg.ID)

	switch cmd.Kind {
	case command.Help:
		return report.Help, true
	case command.RecordIncome, command.RecordExpense:
		return s.record(ctx, cmd, sender), true
	case command.PocketTransfer:
		return s.transfer(ctx, cmd, sender), true
	case command.PocketBalanceQuery:
		return s.pocketBalance(ctx, cmd.Pocket), true
	case command.PocketListQuery:
		return s.pocketList(ctx), true
	case command.GenericDataQuery:
		return s.dataQuery(ctx, cmd.Raw), true
	}
	return "", false
}

func (s *FinanceService) readLedger(ctx context.Context) ([]core.Transaction, error) {
	txs, err := sheets.ReadAll(ctx, s.ledger, s.maxRows)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return txs, nil
}

func (s *FinanceService) fail(ctx context.Context, msg string, err error, op string) {
	s.events.LogError(ctx, msg, err, op, nil)
}

func (s *FinanceService) record(ctx context.Context, cmd command.Command, sender string) string {
	req, err := command.ParseRecord(cmd)
	if err != nil {
		return report.RecordFormatHint
	}
	amount, err := core.ParseAmount(req.AmountText)
	if err != nil {
		return report.AmountFormatHint
	}

	if req.Type == core.Expense {
		txs, err := s.readLedger(ctx)
		if err != nil {
			s.fail(ctx, "Failed to check pocket balance", err, log.OpRead)
			return report.RecordFailed
		}
		if reply, rejected := insufficient(core.CheckFunds(req.Pocket, core.PocketBalanceOf(txs, req.Pocket), amount), report.InsufficientExpense); rejected {
			return reply
		}
	}

	category := s.oracle.Categorize(ctx, req.Description, req.Type)
	tx := core.NewTransaction(s.now(), req.Type, amount, req.Description, category, req.Pocket, s.sourceTag, sender)

	ref, err := s.ledger.Append(ctx, tx)
	if err != nil {
		s.fail(ctx, "Failed to record transaction", err, log.OpAppend)
		return report.RecordFailed
	}
	s.events.LogTransactionRecorded(ctx, string(tx.Type), tx.Pocket, tx.Amount.String(), tx.Category, ref)

	txs, err := s.readLedger(ctx)
	if err != nil {
		s.fail(ctx, "Transaction recorded but balance refresh failed", err, log.OpRead)
		return report.RecordFailed
	}
	return report.RecordConfirmation(tx, core.PocketBalanceOf(txs, tx.Pocket))
}

// insufficient renders a funds rejection when err is one.
func insufficient(err error, render func(*core.InsufficientFundsError) string) (string, bool) {
	var funds *core.InsufficientFundsError
	if errors.As(err, &funds) {
		return render(funds), true
	}
	return "", false
}

// transfer writes an expense leg then an income leg. The two appends are
// not atomic: if the second fails the ledger keeps the first.
func (s *FinanceService) transfer(ctx context.Context, cmd command.Command, sender string) string {
	amount, err := core.ParseAmount(cmd.AmountText)
	if err != nil || cmd.From == "" || cmd.To == "" {
		return report.TransferFormatHint
	}

	txs, err := s.readLedger(ctx)
	if err != nil {
		s.fail(ctx, "Failed to check pocket balance", err, log.OpRead)
		return report.TransferFailed
	}
	if reply, rejected := insufficient(core.CheckFunds(cmd.From, core.PocketBalanceOf(txs, cmd.From), amount), report.InsufficientTransfer); rejected {
		return reply
	}

	now := s.now()
	out := core.NewTransaction(now, core.Expense, amount, "Transfer ke pocket "+cmd.To,
		core.TransferCategory, cmd.From, s.transferSource, sender)
	in := core.NewTransaction(now, core.Income, amount, "Transfer dari pocket "+cmd.From,
		core.TransferCategory, cmd.To, s.transferSource, sender)

	outRef, err := s.ledger.Append(ctx, out)
	if err != nil {
		s.fail(ctx, "Failed to write transfer debit", err, log.OpTransfer)
		return report.TransferFailed
	}
	inRef, err := s.ledger.Append(ctx, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "Transfer debit written without credit leg",
			log.FieldOperation, log.OpTransfer,
			log.FieldError, err.Error(),
			log.FieldRowRef, outRef,
			log.FieldFromPocket, cmd.From,
			log.FieldToPocket, cmd.To,
			log.FieldAmount, amount.String())
		return report.TransferFailed
	}
	s.logger.InfoContext(ctx, "Transfer recorded",
		log.FieldOperation, log.OpTransfer,
		log.FieldFromPocket, cmd.From,
		log.FieldToPocket, cmd.To,
		log.FieldAmount, amount.String(),
		log.FieldRowRef, outRef+","+inRef)

	txs, err = s.readLedger(ctx)
	if err != nil {
		s.fail(ctx, "Transfer recorded but balance refresh failed", err, log.OpRead)
		return report.TransferFailed
	}
	return report.TransferConfirmation{
		From:        cmd.From,
		To:          cmd.To,
		FromBalance: core.PocketBalanceOf(txs, cmd.From),
		ToBalance:   core.PocketBalanceOf(txs, cmd.To),
		Amount:      amount,
		Date:        out.Date,
		Time:        out.Time,
	}.String()
}

func (s *FinanceService) pocketBalance(ctx context.Context, pocket string) string {
	txs, err := s.readLedger(ctx)
	if err != nil {
		s.fail(ctx, "Failed to read pocket balance", err, log.OpRead)
		return report.PocketBalanceFailed
	}
	if pocket == "" {
		return report.AllPockets(core.AllPocketBalances(txs))
	}
	return report.PocketDetail(pocket,
		core.PocketBalanceOf(txs, pocket),
		core.RecentForPocket(txs, pocket, report.RecentTransactions))
}

func (s *FinanceService) pocketList(ctx context.Context) string {
	txs, err := s.readLedger(ctx)
	if err != nil {
		s.fail(ctx, "Failed to list pockets", err, log.OpRead)
		return report.PocketListFailed
	}
	return report.PocketList(core.AllPocketBalances(txs))
}

func (s *FinanceService) dataQuery(ctx context.Context, text string) string {
	intent, err := s.oracle.InterpretQuery(ctx, text)
	if err != nil {
		s.fail(ctx, "Failed to interpret query", err, log.OpInterpret)
		return report.QueryFailed
	}
	if intent == nil {
		return report.QueryUsageHint
	}
	start, err := core.ParseDate(intent.StartDate)
	if err != nil {
		return report.QueryUsageHint
	}
	end, err := core.ParseDate(intent.EndDate)
	if err != nil {
		return report.QueryUsageHint
	}

	txs, err := s.readLedger(ctx)
	if err != nil {
		s.fail(ctx, "Failed to read ledger for report", err, log.OpRead)
		return report.QueryFailed
	}
	return report.RangeReport(*intent, core.Summarize(core.FilterByDateRange(txs, start, end)))
}
