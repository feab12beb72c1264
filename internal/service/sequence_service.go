package service

import (
	"context"
	"errors"
	"time"

	"kecdesk/internal/infra"
	"kecdesk/internal/model"
	"kecdesk/internal/numbering"
	"kecdesk/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Locker serialises allocators across processes. It is advisory: an error
// from Obtain is logged and the attempt proceeds under the row lock alone.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// PersistFunc writes the document that carries a freshly allocated id. It runs
// inside the allocation transaction; a unique violation from it triggers a
// retry with a new id.
type PersistFunc func(tx *gorm.DB, id string) error

// SequenceService hands out invoice numbers and inquiry create-ids.
type SequenceService interface {
	// AllocateInvoiceNumber reserves the next invoice number of fy.
	AllocateInvoiceNumber(ctx context.Context, fy numbering.FiscalYear) (string, error)
	// AllocateInquiryID reserves the next inquiry create-id of m.
	AllocateInquiryID(ctx context.Context, m numbering.MonthEpoch) (string, error)

	// WithInvoiceNumber allocates and persists in one transaction.
	WithInvoiceNumber(ctx context.Context, fy numbering.FiscalYear, persist PersistFunc) (string, error)
	WithInquiryID(ctx context.Context, m numbering.MonthEpoch, persist PersistFunc) (string, error)
}

type SequenceOptions struct {
	Prefix      string
	MaxAttempts int
	LockTTL     time.Duration
}

type sequenceService struct {
	repo   repository.NumberSequenceRepository
	locker Locker
	opts   SequenceOptions
}

// NewSequenceService builds the allocator. locker may be nil.
func NewSequenceService(repo repository.NumberSequenceRepository, locker Locker, opts SequenceOptions) SequenceService {
	if opts.Prefix == "" {
		opts.Prefix = numbering.DefaultPrefix
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Second
	}
	return &sequenceService{repo: repo, locker: locker, opts: opts}
}

// series binds a document type and epoch to its id format.
type series struct {
	docType string
	epoch   string
	format  func(seq int) (string, error)
	// parse returns the sequence of an id and whether the id belongs to epoch.
	parse func(id string) (seq int, sameEpoch bool, err error)
}

func (s *sequenceService) invoiceSeries(fy numbering.FiscalYear) series {
	return series{
		docType: model.DocTypeInvoice,
		epoch:   fy.Tag(),
		format:  func(seq int) (string, error) { return numbering.FormatInvoiceNumber(s.opts.Prefix, seq, fy) },
		parse: func(id string) (int, bool, error) {
			seq, got, err := numbering.ParseInvoiceNumber(s.opts.Prefix, id)
			return seq, got == fy, err
		},
	}
}

func (s *sequenceService) inquirySeries(m numbering.MonthEpoch) series {
	return series{
		docType: model.DocTypeInquiry,
		epoch:   m.Tag(),
		format:  func(seq int) (string, error) { return numbering.FormatInquiryID(s.opts.Prefix, seq, m) },
		parse: func(id string) (int, bool, error) {
			seq, got, err := numbering.ParseInquiryID(s.opts.Prefix, id)
			return seq, got == m, err
		},
	}
}

func (s *sequenceService) AllocateInvoiceNumber(ctx context.Context, fy numbering.FiscalYear) (string, error) {
	return s.WithInvoiceNumber(ctx, fy, nil)
}

func (s *sequenceService) AllocateInquiryID(ctx context.Context, m numbering.MonthEpoch) (string, error) {
	return s.WithInquiryID(ctx, m, nil)
}

func (s *sequenceService) WithInvoiceNumber(ctx context.Context, fy numbering.FiscalYear, persist PersistFunc) (string, error) {
	if _, err := numbering.FormatInvoiceNumber(s.opts.Prefix, 0, fy); err != nil {
		return "", err
	}
	return s.allocate(ctx, s.invoiceSeries(fy), persist)
}

func (s *sequenceService) WithInquiryID(ctx context.Context, m numbering.MonthEpoch, persist PersistFunc) (string, error) {
	if _, err := numbering.FormatInquiryID(s.opts.Prefix, 0, m); err != nil {
		return "", err
	}
	return s.allocate(ctx, s.inquirySeries(m), persist)
}

// allocate retries whole attempts on integrity violations, up to MaxAttempts.
func (s *sequenceService) allocate(ctx context.Context, sr series, persist PersistFunc) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		id, err := s.attempt(ctx, sr, attempt, persist)
		if err == nil {
			infra.SequenceAllocations.WithLabelValues(sr.docType).Inc()
			return id, nil
		}
		if !errors.Is(err, ErrIntegrityViolation) {
			return "", err
		}
		lastErr = err
		infra.SequenceConflicts.WithLabelValues(sr.docType).Inc()
		log.Warn().Err(err).
			Str("doc_type", sr.docType).
			Str("epoch", sr.epoch).
			Int("attempt", attempt).
			Msg("sequence: conflict on commit, retrying")
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}

	infra.SequenceContentionFailures.WithLabelValues(sr.docType).Inc()
	log.Error().Err(lastErr).
		Str("doc_type", sr.docType).
		Str("epoch", sr.epoch).
		Int("attempts", s.opts.MaxAttempts).
		Msg("sequence: allocation exhausted retries")
	return "", &ContentionError{DocType: sr.docType, Epoch: sr.epoch, Attempts: s.opts.MaxAttempts, Err: lastErr}
}

func (s *sequenceService) attempt(ctx context.Context, sr series, attempt int, persist PersistFunc) (string, error) {
	release := s.lock(ctx, sr)
	defer release()

	var id string
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		counter, err := s.repo.LockCounter(ctx, tx, sr.docType, sr.epoch)
		fresh := false
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			counter = &model.NumberSequence{DocType: sr.docType, Epoch: sr.epoch}
			fresh = true
		case err != nil:
			return err
		}

		// A new counter starts from the documents already on file; a retry
		// re-reads them in case a writer bypassed the counter.
		last := counter.LastValue
		if fresh || attempt > 1 {
			mark, err := s.watermark(ctx, tx, sr)
			if err != nil {
				return err
			}
			if mark > last {
				last = mark
			}
		}

		next := last + 1
		id, err = sr.format(next)
		if err != nil {
			return err
		}
		if numbering.Widened(next) {
			infra.SequenceWidened.WithLabelValues(sr.docType).Inc()
			log.Warn().Str("doc_type", sr.docType).Str("epoch", sr.epoch).Str("id", id).
				Msg("sequence: past 999, id widened")
		}

		counter.LastValue = next
		if fresh {
			err = s.repo.CreateCounter(ctx, tx, counter)
		} else {
			err = s.repo.SaveCounter(ctx, tx, counter)
		}
		if err != nil {
			return integrity(err)
		}
		if persist != nil {
			return integrity(persist(tx, id))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// watermark is the highest sequence among assigned ids of the epoch.
// Ids that do not parse are skipped and reported as anomalies.
func (s *sequenceService) watermark(ctx context.Context, tx *gorm.DB, sr series) (int, error) {
	ids, err := s.repo.ListAssignedIDs(ctx, tx, sr.docType, sr.epoch)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, id := range ids {
		seq, same, err := sr.parse(id)
		if err != nil || !same {
			infra.SequenceAnomalies.WithLabelValues(sr.docType).Inc()
			ev := log.Warn().Str("doc_type", sr.docType).Str("epoch", sr.epoch).Str("assigned_id", id)
			if err != nil {
				ev = ev.Err(err)
			}
			ev.Msg("sequence: skipping unparseable assigned id")
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

func (s *sequenceService) lock(ctx context.Context, sr series) func() {
	if s.locker == nil {
		return func() {}
	}
	release, err := s.locker.Obtain(ctx, "seq:"+sr.docType+":"+sr.epoch, s.opts.LockTTL)
	if err != nil {
		log.Warn().Err(err).Str("doc_type", sr.docType).Str("epoch", sr.epoch).
			Msg("sequence: redis lock unavailable, relying on row lock")
		return func() {}
	}
	return release
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
