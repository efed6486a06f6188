package publisher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// S3CLI publishes by shelling out to the aws CLI: mirrored sync into the
// bucket, then an optional CloudFront invalidation. The CLI keeps bucket
// credentials in the operator's environment instead of this process.
type S3CLI struct {
	Bucket         string
	DistributionID string
	CLIPath        string
	Logger         *slog.Logger
}

func NewS3CLI(bucket, distributionID, cliPath string, logger *slog.Logger) *S3CLI {
	if cliPath == "" {
		cliPath = "aws"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3CLI{Bucket: bucket, DistributionID: distributionID, CLIPath: cliPath, Logger: logger}
}

func (p *S3CLI) Mode() string { return "s3" }

func (p *S3CLI) Deploy(ctx context.Context, dir string) error {
	if p.Bucket == "" {
		return sberrors.ConfigRequired("publish.s3.bucket")
	}

	target := "s3://" + strings.TrimPrefix(p.Bucket, "s3://")
	p.Logger.Info("syncing site to bucket", logfields.Dir(dir), logfields.URL(target))
	if out, err := p.run(ctx, "s3", "sync", dir, target, "--delete"); err != nil {
		return sberrors.PublishFailed(dir, fmt.Errorf("aws s3 sync: %w: %s", err, out))
	}

	if p.DistributionID == "" {
		return nil
	}
	p.Logger.Info("invalidating CDN distribution", slog.String("distribution_id", p.DistributionID))
	if out, err := p.run(ctx, "cloudfront", "create-invalidation",
		"--distribution-id", p.DistributionID, "--paths", "/*"); err != nil {
		return sberrors.InvalidationFailed(fmt.Errorf("aws cloudfront create-invalidation: %w: %s", err, out))
	}
	return nil
}

func (p *S3CLI) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, p.CLIPath, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return strings.TrimSpace(out.String()), err
}
