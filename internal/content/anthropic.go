package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/errgroup"

	"devstreak/internal/apperr"
	"devstreak/internal/models"
)

// AnthropicGenerator produces post variants through the Anthropic
// messages API. The three platform renditions are generated
// concurrently.
type AnthropicGenerator struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicGenerator builds a generator for the given API key and
// model name.
func NewAnthropicGenerator(apiKey, model string) *AnthropicGenerator {
	return &AnthropicGenerator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// GeneratePost renders one completion into all three platform variants.
func (g *AnthropicGenerator) GeneratePost(ctx context.Context, input Input) (Variants, error) {
	var variants Variants
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		variants.XPost, err = g.generate(ctx, buildXPrompt(input), xMaxTokens)
		return err
	})
	eg.Go(func() (err error) {
		variants.LinkedInPost, err = g.generate(ctx, buildLinkedInPrompt(input), linkedInMaxTokens)
		return err
	})
	eg.Go(func() (err error) {
		variants.BlogPost, err = g.generate(ctx, buildBlogPrompt(input), blogMaxTokens)
		return err
	})
	if err := eg.Wait(); err != nil {
		return Variants{}, err
	}
	return variants, nil
}

// GenerateWrapup renders a whole completed week into all three
// platform variants.
func (g *AnthropicGenerator) GenerateWrapup(ctx context.Context, input WrapupInput) (Variants, error) {
	var variants Variants
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		variants.XPost, err = g.generate(ctx, buildWrapupPrompt(input, models.PlatformX), xMaxTokens)
		return err
	})
	eg.Go(func() (err error) {
		variants.LinkedInPost, err = g.generate(ctx, buildWrapupPrompt(input, models.PlatformLinkedIn), linkedInMaxTokens+wrapupBonusTokens)
		return err
	})
	eg.Go(func() (err error) {
		variants.BlogPost, err = g.generate(ctx, buildWrapupPrompt(input, models.PlatformBlog), blogMaxTokens+wrapupBonusTokens)
		return err
	})
	if err := eg.Wait(); err != nil {
		return Variants{}, err
	}
	return variants, nil
}

func (g *AnthropicGenerator) generate(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", wrapAPIError(err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", apperr.New(apperr.Upstream, "unexpected response format from text generation API")
}

// wrapAPIError maps provider failures into the taxonomy, keeping rate
// limits distinct so callers can back off.
func wrapAPIError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return apperr.Wrap(apperr.RateLimited, "text generation rate limit reached, try again shortly", err)
		}
		return apperr.Wrap(apperr.Upstream, fmt.Sprintf("text generation API returned %d", apiErr.StatusCode), err)
	}
	return apperr.Wrap(apperr.Upstream, "text generation request failed", err)
}
