package gateways

import (
	"context"
	"time"

	"github.com/shipcask/shipcask/internal/domain/entities"
	"github.com/shipcask/shipcask/internal/domain/interfaces"
)

// Codesigner signs the application bundle in place with codesign and verifies
// the resulting signature. An empty identity selects ad-hoc signing, which is
// enough for local distribution but carries no developer certificate.
type Codesigner struct {
	runner       CommandRunner
	cfg          entities.SigningConfig
	entitlements string
	log          interfaces.Logger
}

// NewCodesigner creates a signer using the given signing configuration.
func NewCodesigner(runner CommandRunner, cfg entities.SigningConfig, entitlements string, log interfaces.Logger) *Codesigner {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &Codesigner{
		runner:       runner,
		cfg:          cfg,
		entitlements: entitlements,
		log:          log,
	}
}

// Sign applies the code signature and runs a strict verification pass so a
// bad signature is caught here rather than by Gatekeeper on a user's machine.
func (c *Codesigner) Sign(ctx context.Context, artifact *entities.BuildArtifact) (*entities.SignedArtifact, error) {
	adHoc := c.cfg.AdHoc()
	identity := c.cfg.Identity
	if adHoc {
		identity = "-"
	}

	args := []string{"--force", "--deep"}
	if !adHoc && c.cfg.HardenedRuntime {
		args = append(args, "--options", "runtime")
	}
	if c.entitlements != "" {
		args = append(args, "--entitlements", c.entitlements)
	}
	args = append(args, "--sign", identity, artifact.BundlePath)

	c.log.Info("signing bundle",
		interfaces.F("identity", identity),
		interfaces.F("ad_hoc", adHoc))

	sign := c.runner.Run(ctx, ToolInvocation{
		Tool:        "codesign",
		Args:        args,
		Timeout:     5 * time.Minute,
		Description: "codesign",
	})
	if !sign.Success {
		return nil, sign.ToolError("codesign")
	}

	verify := c.runner.Run(ctx, ToolInvocation{
		Tool:        "codesign",
		Args:        []string{"--verify", "--deep", "--strict", artifact.BundlePath},
		Timeout:     2 * time.Minute,
		Description: "codesign verify",
	})
	if !verify.Success {
		return nil, verify.ToolError("signature verification")
	}

	return &entities.SignedArtifact{
		Artifact: artifact,
		Identity: identity,
		AdHoc:    adHoc,
		SignedAt: time.Now(),
	}, nil
}
