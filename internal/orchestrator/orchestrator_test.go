package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowlands/internal/domain"
	"crowlands/internal/ledger"
	"crowlands/internal/persona"
	"crowlands/internal/providers/image"
	"crowlands/internal/providers/spelltext"
)

type fakeReserver struct {
	res   *ledger.Reservation
	err   error
	calls int
}

func (f *fakeReserver) Reserve(_ context.Context, _ string) (*ledger.Reservation, error) {
	f.calls++
	return f.res, f.err
}

type fakeText struct {
	reply string
	err   error
	calls int
	last  spelltext.Request
}

func (f *fakeText) Generate(_ context.Context, req spelltext.Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

type fakeImage struct {
	asset image.Asset
	err   error
	calls int
}

func (f *fakeImage) Generate(_ context.Context, _ image.Request) (*image.Asset, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &f.asset, f.err
}

const structuredReply = `{
  "title": "Hearthside Protection",
  "materials": ["salt", "a white candle"],
  "steps": [{"instruction": "Light the candle.", "duration": "1 minute"}],
  "spoken_words": {"invocation": "By hearth and hold", "chant": "Safe within", "closing": "So it stands"},
  "historical_context": {"tradition": "English cunning craft"},
  "warnings": ["Never leave a flame unattended."]
}`

func newTestOrchestrator(t *testing.T, res Reserver, text spelltext.Generator, img image.Generator) *Orchestrator {
	t.Helper()
	reg, err := persona.NewRegistry()
	require.NoError(t, err)
	logger := zerolog.Nop()
	return New(reg, res, text, img, logger)
}

func TestGenerateStructuredResult(t *testing.T) {
	reserver := &fakeReserver{res: &ledger.Reservation{Granted: true, Tier: domain.TierFree, Limit: 3, Remaining: 2}}
	text := &fakeText{reply: structuredReply}

	o := newTestOrchestrator(t, reserver, text, nil)
	result, err := o.Generate(context.Background(), Request{
		UserID:    "user-1",
		PersonaID: "kathleen",
		Intention: "protect my home",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hearthside Protection", result.Artifact.Title)
	assert.True(t, result.Artifact.Structured())
	assert.Equal(t, 2, result.Remaining)
	require.NotNil(t, result.Persona)
	assert.Equal(t, "kathleen", result.Persona.ID)
	assert.Contains(t, text.last.Prompt, "protect my home")
}

func TestGenerateNeutralGuideWhenNoPersonaSelected(t *testing.T) {
	reserver := &fakeReserver{res: &ledger.Reservation{Granted: true, Unlimited: true, Tier: domain.TierPro}}
	text := &fakeText{reply: structuredReply}

	o := newTestOrchestrator(t, reserver, text, nil)
	result, err := o.Generate(context.Background(), Request{UserID: "user-1", Intention: "find lost keys"})
	require.NoError(t, err)

	assert.Nil(t, result.Persona)
	assert.True(t, result.Unlimited)
}

func TestGenerateEmptyIntentionRejectedBeforeReserve(t *testing.T) {
	reserver := &fakeReserver{}
	text := &fakeText{}

	o := newTestOrchestrator(t, reserver, text, nil)
	_, err := o.Generate(context.Background(), Request{UserID: "user-1", Intention: "   "})
	require.ErrorIs(t, err, domain.ErrInvalidIntention)
	assert.Zero(t, reserver.calls)
	assert.Zero(t, text.calls)
}

func TestGenerateUnknownPersonaRejectedBeforeReserve(t *testing.T) {
	reserver := &fakeReserver{}
	text := &fakeText{}

	o := newTestOrchestrator(t, reserver, text, nil)
	_, err := o.Generate(context.Background(), Request{UserID: "user-1", PersonaID: "nobody", Intention: "luck"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, reserver.calls)
}

func TestGenerateQuotaDenialSkipsProviders(t *testing.T) {
	reserver := &fakeReserver{res: &ledger.Reservation{Granted: false, Tier: domain.TierFree, Limit: 3, Remaining: 0}}
	text := &fakeText{reply: structuredReply}
	img := &fakeImage{}

	o := newTestOrchestrator(t, reserver, text, img)
	_, err := o.Generate(context.Background(), Request{UserID: "user-1", Intention: "luck", WantImage: true})

	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
	var qe *domain.QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 3, qe.Limit)
	assert.Zero(t, text.calls)
	assert.Zero(t, img.calls)
}

func TestGenerateProviderFailureDoesNotRefund(t *testing.T) {
	reserver := &fakeReserver{res: &ledger.Reservation{Granted: true, Tier: domain.TierFree, Limit: 3, Remaining: 1}}
	text := &fakeText{err: domain.ErrProviderFailure}

	o := newTestOrchestrator(t, reserver, text, nil)
	_, err := o.Generate(context.Background(), Request{UserID: "user-1", Intention: "luck"})

	require.ErrorIs(t, err, domain.ErrProviderFailure)
	// The unit stays consumed: exactly one reserve call, no compensating write.
	assert.Equal(t, 1, reserver.calls)
}

func TestGenerateUnparseableReplyFallsBackToRawText(t *testing.T) {
	reserver := &fakeReserver{res: &ledger.Reservation{Granted: true, Tier: domain.TierFree, Limit: 3, Remaining: 1}}
	text := &fakeText{reply: "The spirits offer only prose tonight."}

	o := newTestOrchestrator(t, reserver, text, nil)
	result, err := o.Generate(context.Background(), Request{UserID: "user-1", Intention: "calm a restless mind"})
	require.NoError(t, err)

	assert.True(t, result.Artifact.ParseFailed)
	assert.False(t, result.Artifact.Structured())
	assert.Equal(t, "The spirits offer only prose tonight.", result.Artifact.RawText)
	assert.NotEmpty(t, result.Artifact.Title)
}

func TestGenerateImageFailureDegradesGracefully(t *testing.T) {
	reserver := &fakeReserver{res: &ledger.Reservation{Granted: true, Unlimited: true, Tier: domain.TierPro}}
	text := &fakeText{reply: structuredReply}
	img := &fakeImage{err: errors.New("model overloaded")}

	o := newTestOrchestrator(t, reserver, text, img)
	result, err := o.Generate(context.Background(), Request{UserID: "user-1", Intention: "luck", WantImage: true})
	require.NoError(t, err)

	assert.True(t, result.ImageFailed)
	assert.Empty(t, result.Artifact.ImageBase64)
	assert.Equal(t, "Hearthside Protection", result.Artifact.Title)
}

func TestGenerateAttachesImageWhenRequested(t *testing.T) {
	reserver := &fakeReserver{res: &ledger.Reservation{Granted: true, Unlimited: true, Tier: domain.TierPro}}
	text := &fakeText{reply: structuredReply}
	img := &fakeImage{asset: image.Asset{Base64: "aGVsbG8=", MIME: "image/png"}}

	o := newTestOrchestrator(t, reserver, text, img)
	result, err := o.Generate(context.Background(), Request{UserID: "user-1", Intention: "luck", WantImage: true})
	require.NoError(t, err)

	assert.False(t, result.ImageFailed)
	assert.Equal(t, "aGVsbG8=", result.Artifact.ImageBase64)
	assert.Equal(t, 1, img.calls)
}

func TestGenerateSkipsImageWhenNotRequested(t *testing.T) {
	reserver := &fakeReserver{res: &ledger.Reservation{Granted: true, Unlimited: true, Tier: domain.TierPro}}
	text := &fakeText{reply: structuredReply}
	img := &fakeImage{asset: image.Asset{Base64: "aGVsbG8="}}

	o := newTestOrchestrator(t, reserver, text, img)
	result, err := o.Generate(context.Background(), Request{UserID: "user-1", Intention: "luck"})
	require.NoError(t, err)

	assert.Zero(t, img.calls)
	assert.False(t, result.ImageFailed)
}

func TestParseArtifactStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + structuredReply + "\n```"
	a := parseArtifact(fenced, "protect my home")
	assert.False(t, a.ParseFailed)
	assert.Equal(t, "Hearthside Protection", a.Title)
}

func TestParseArtifactIgnoresSurroundingProse(t *testing.T) {
	wrapped := "Here is your ritual:\n" + structuredReply + "\nGo gently."
	a := parseArtifact(wrapped, "protect my home")
	assert.False(t, a.ParseFailed)
	require.Len(t, a.Steps, 1)
	assert.Equal(t, "Light the candle.", a.Steps[0].Instruction)
}

func TestParseArtifactRequiresTitleAndSteps(t *testing.T) {
	a := parseArtifact(`{"materials": ["salt"]}`, "protect my home")
	assert.True(t, a.ParseFailed)
}

func TestParseArtifactCarriesHistoricalContext(t *testing.T) {
	a := parseArtifact(structuredReply, "protect my home")
	require.NotNil(t, a.Context)
	assert.Equal(t, "English cunning craft", a.Context.Tradition)
}

func TestParseArtifactOmitsEmptyHistoricalContext(t *testing.T) {
	bare := `{"title": "Hearthside Protection", "steps": [{"instruction": "Light the candle."}]}`
	a := parseArtifact(bare, "protect my home")
	assert.False(t, a.ParseFailed)
	assert.Nil(t, a.Context)

	encoded, err := json.Marshal(a)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "historical_context")
}
