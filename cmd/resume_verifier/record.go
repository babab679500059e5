package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recorder is the part of store.Store used to persist a run
type recorder interface {
	CreateVerification(ctx context.Context, resumeID, kind, profileURL string) (uuid.UUID, error)
	CompleteVerification(ctx context.Context, id uuid.UUID, result any) error
	FailVerification(ctx context.Context, id uuid.UUID, cause error) error
}

// persisted tracks the stored record of one run. A nil *persisted records nothing.
type persisted struct {
	rec recorder
	id  uuid.UUID
}

func startRecord(ctx context.Context, rec recorder, resumeID, kind, profileURL string) (*persisted, error) {
	if resumeID == "" {
		return nil, fmt.Errorf("--resume-id is required when a database is configured")
	}
	id, err := rec.CreateVerification(ctx, resumeID, kind, profileURL)
	if err != nil {
		return nil, err
	}
	return &persisted{rec: rec, id: id}, nil
}

// complete stores the result. Persistence failures are logged and do not fail the command.
func (p *persisted) complete(ctx context.Context, log *zap.Logger, result any) {
	if p == nil {
		return
	}
	if err := p.rec.CompleteVerification(ctx, p.id, result); err != nil {
		log.Warn("failed to store verification result", zap.String("verification_id", p.id.String()), zap.Error(err))
		return
	}
	log.Info("stored verification", zap.String("verification_id", p.id.String()))
}

func (p *persisted) fail(ctx context.Context, log *zap.Logger, cause error) {
	if p == nil {
		return
	}
	// the run context may already be canceled
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := p.rec.FailVerification(ctx, p.id, cause); err != nil {
		log.Warn("failed to mark verification failed", zap.String("verification_id", p.id.String()), zap.Error(err))
	}
}
