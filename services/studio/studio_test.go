package studio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	catalogRepo "fashionstudio/database/repository/catalog"
	generationRepo "fashionstudio/database/repository/generation"
	profileRepo "fashionstudio/database/repository/profile"
	"fashionstudio/models"
	"fashionstudio/services/intelligence"
	"fashionstudio/services/ledger"
	"fashionstudio/services/phoneauth"
	"fashionstudio/services/session"
	"fashionstudio/services/storage"
	"fashionstudio/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, 0x00, 0x00, 0x01}
	pngBytes  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R'}
)

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *fakeGenerator) Generate(_ context.Context, model, garment intelligence.Image) (intelligence.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return intelligence.Image{}, g.err
	}
	return intelligence.Image{Data: pngBytes, MIMEType: "image/png"}, nil
}

// countingBlobs counts downloads so tests can prove no external work happened.
type countingBlobs struct {
	*storage.MemoryStorageService
	downloads int
	uploadErr error
}

func (b *countingBlobs) Download(ctx context.Context, ref string) ([]byte, error) {
	b.downloads++
	return b.MemoryStorageService.Download(ctx, ref)
}

func (b *countingBlobs) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	if b.uploadErr != nil {
		return "", b.uploadErr
	}
	return b.MemoryStorageService.Upload(ctx, objectPath, data, contentType)
}

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	svc       *DefaultStudioService
	profiles  *profileRepo.MemoryProfileRepo
	records   *generationRepo.MemoryGenerationRepo
	blobs     *countingBlobs
	generator *fakeGenerator
	ledger    *ledger.DefaultLedgerService
	clock     *stepClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	utils.Logger = zaptest.NewLogger(t)

	clock := &stepClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	profiles := profileRepo.NewMemoryProfileRepo()
	records := generationRepo.NewMemoryGenerationRepo()
	blobs := &countingBlobs{MemoryStorageService: storage.NewMemoryStorageService("studio-test")}
	generator := &fakeGenerator{}
	metrics, err := ledger.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	led := ledger.NewLedgerService(profiles, metrics)
	led.Now = clock.Now

	svc := &DefaultStudioService{
		Records: records,
		Models: catalogRepo.NewMemoryCatalogRepo(
			models.PredefinedModel{ID: "m1", Name: "Amara", Gender: "female"},
			models.PredefinedModel{ID: "m2", Name: "Bo", Gender: "male"},
		),
		Blobs:             blobs,
		Generators:        intelligence.Generators{models.MethodVertexAI: generator, models.MethodGeminiAPI: generator},
		Ledger:            led,
		DefaultMethod:     models.MethodVertexAI,
		GenerationTimeout: time.Minute,
		MaxUploadBytes:    1 << 10,
		Now:               clock.Now,
	}
	return &fixture{svc: svc, profiles: profiles, records: records, blobs: blobs, generator: generator, ledger: led, clock: clock}
}

func (f *fixture) addUser(t *testing.T, uid string, credits int64) {
	t.Helper()
	require.NoError(t, f.profiles.Create(context.Background(), &models.UserProfile{ID: uid, RemainingGenerations: credits}))
}

func (f *fixture) uploadPair(t *testing.T, uid string) models.GenerateRequest {
	t.Helper()
	ctx := context.Background()
	model, err := f.svc.Upload(ctx, uid, storage.KindModels, "me.jpg", jpegBytes)
	require.NoError(t, err)
	garment, err := f.svc.Upload(ctx, uid, storage.KindGarments, "shirt.png", pngBytes)
	require.NoError(t, err)
	return models.GenerateRequest{ModelImageURL: model.URL, GarmentImageURL: garment.URL}
}

func TestUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Upload(ctx, "uid-1", storage.KindModels, "my photo.jpg", jpegBytes)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.ContentType)
	assert.Regexp(t, `^uploads/uid-1/models/\d+_my_photo\.jpg$`, res.Path)
	assert.Equal(t, "mem://studio-test/"+res.Path, res.URL)

	_, err = f.svc.Upload(ctx, "uid-1", "shoes", "a.jpg", jpegBytes)
	assert.True(t, utils.IsKind(err, utils.KindInvalidInput))

	_, err = f.svc.Upload(ctx, "uid-1", storage.KindModels, "a.txt", []byte("plain text, not an image"))
	assert.True(t, utils.IsKind(err, utils.KindInvalidInput))

	_, err = f.svc.Upload(ctx, "uid-1", storage.KindModels, "big.jpg", append(jpegBytes, make([]byte, 2048)...))
	assert.True(t, utils.IsKind(err, utils.KindInvalidInput))

	_, err = f.svc.Upload(ctx, "uid-1", storage.KindModels, "empty.jpg", nil)
	assert.True(t, utils.IsKind(err, utils.KindInvalidInput))
}

func TestGenerateFromDottedUpload(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "uid-1", 1)
	ctx := context.Background()

	model, err := f.svc.Upload(ctx, "uid-1", storage.KindModels, "summer..look.jpg", jpegBytes)
	require.NoError(t, err)
	assert.Regexp(t, `^uploads/uid-1/models/\d+_summer\.look\.jpg$`, model.Path)
	garment, err := f.svc.Upload(ctx, "uid-1", storage.KindGarments, "shirt...png", pngBytes)
	require.NoError(t, err)

	res, err := f.svc.Generate(ctx, "uid-1", models.GenerateRequest{ModelImageURL: model.URL, GarmentImageURL: garment.URL})
	require.NoError(t, err)
	assert.True(t, res.CreditApplied)
}

func TestSameInstantGenerationsKeepSeparateOutputs(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "uid-1", 2)
	req := f.uploadPair(t, "uid-1")
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.Now = func() time.Time { return fixed }

	first, err := f.svc.Generate(context.Background(), "uid-1", req)
	require.NoError(t, err)
	second, err := f.svc.Generate(context.Background(), "uid-1", req)
	require.NoError(t, err)
	assert.NotEqual(t, first.Record.OutputImageURL, second.Record.OutputImageURL)

	for _, res := range []*models.GenerationResult{first, second} {
		_, err := f.blobs.MemoryStorageService.Download(context.Background(), res.Record.OutputImageURL)
		assert.NoError(t, err)
	}
}

func TestGenerateSpendsOneCredit(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "uid-1", 2)
	req := f.uploadPair(t, "uid-1")

	res, err := f.svc.Generate(context.Background(), "uid-1", req)
	require.NoError(t, err)
	assert.True(t, res.CreditApplied)
	assert.Equal(t, int64(1), res.RemainingGenerations)
	assert.Equal(t, int64(1), res.TotalGenerations)
	assert.Equal(t, models.MethodVertexAI, res.Record.Method)
	assert.NotEmpty(t, res.Record.ID)
	assert.Contains(t, res.Record.OutputImageURL, "generated/uid-1/")

	out, err := f.blobs.MemoryStorageService.Download(context.Background(), res.Record.OutputImageURL)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, out)

	list, err := f.svc.Lookbook(context.Background(), "uid-1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "uid-1", 2)
	f.addUser(t, "uid-2", 2)
	req := f.uploadPair(t, "uid-1")
	ctx := context.Background()

	cases := map[string]models.GenerateRequest{
		"missing garment":  {ModelImageURL: req.ModelImageURL},
		"unknown method":   {ModelImageURL: req.ModelImageURL, GarmentImageURL: req.GarmentImageURL, Method: "dall-e"},
		"foreign url":      {ModelImageURL: "https://example.com/a.jpg", GarmentImageURL: req.GarmentImageURL},
		"missing object":   {ModelImageURL: "uploads/uid-1/models/1_nope.jpg", GarmentImageURL: req.GarmentImageURL},
		"path traversal":   {ModelImageURL: "uploads/uid-1/../uid-2/x.jpg", GarmentImageURL: req.GarmentImageURL},
		"blank everything": {ModelImageURL: "  ", GarmentImageURL: " "},
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Generate(ctx, "uid-1", bad)
			assert.True(t, utils.IsKind(err, utils.KindInvalidInput), "got %v", err)
		})
	}

	// Another user's uploads are not usable.
	_, err := f.svc.Generate(ctx, "uid-2", req)
	assert.True(t, utils.IsKind(err, utils.KindInvalidInput))

	assert.Zero(t, f.generator.calls)
	p, err := f.profiles.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.RemainingGenerations)
}

func TestGenerateFailureDoesNotCharge(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "uid-1", 2)
	req := f.uploadPair(t, "uid-1")
	f.generator.err = intelligence.ErrNoImage

	_, err := f.svc.Generate(context.Background(), "uid-1", req)
	assert.True(t, utils.IsKind(err, utils.KindGenerationFailed))

	p, err := f.profiles.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.RemainingGenerations)
	list, err := f.svc.Lookbook(context.Background(), "uid-1", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGenerateOutputStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "uid-1", 2)
	req := f.uploadPair(t, "uid-1")
	f.blobs.uploadErr = errors.New("bucket unavailable")

	_, err := f.svc.Generate(context.Background(), "uid-1", req)
	assert.True(t, utils.IsKind(err, utils.KindStorageUnavailable))
	p, err := f.profiles.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.RemainingGenerations)
}

type brokenSpendRepo struct{ *profileRepo.MemoryProfileRepo }

func (brokenSpendRepo) SpendCredit(context.Context, string, time.Time) (*models.UserProfile, error) {
	return nil, errors.New("write conflict")
}

func TestLedgerGapKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "uid-1", 2)
	req := f.uploadPair(t, "uid-1")
	f.ledger.Profiles = brokenSpendRepo{f.profiles}

	res, err := f.svc.Generate(context.Background(), "uid-1", req)
	assert.True(t, utils.IsKind(err, utils.KindLedgerUpdateFailed))
	require.NotNil(t, res)
	assert.False(t, res.CreditApplied)
	assert.NotEmpty(t, res.Warning)

	list, err := f.svc.Lookbook(context.Background(), "uid-1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.ledger.Metrics.Gaps))
}

func TestLookbookImageOwnerOnly(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "uid-1", 2)
	req := f.uploadPair(t, "uid-1")
	res, err := f.svc.Generate(context.Background(), "uid-1", req)
	require.NoError(t, err)

	rec, err := f.svc.LookbookImage(context.Background(), "uid-1", res.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Record.OutputImageURL, rec.OutputImageURL)

	_, err = f.svc.LookbookImage(context.Background(), "uid-2", res.Record.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	_, err = f.svc.LookbookImage(context.Background(), "uid-1", "missing")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestCatalogFilter(t *testing.T) {
	f := newFixture(t)
	all, err := f.svc.Catalog(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	male, err := f.svc.Catalog(context.Background(), "Male")
	require.NoError(t, err)
	require.Len(t, male, 1)
	assert.Equal(t, "Bo", male[0].Name)
}

// A new user verifies +15551234567 with 123456, gets two generations, spends
// both, and the third attempt stops before any download or generator call.
func TestNewUserSpendsStartingCredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	machine := phoneauth.NewMachine("device-1", phoneauth.NewStubChannel("123456"), phoneauth.NewMemoryCooldownStore(), phoneauth.DefaultConfig())
	handle, err := machine.RequestCode(ctx, "+15551234567", phoneauth.ClientToken("recaptcha-token"))
	require.NoError(t, err)
	identity, err := machine.VerifyCode(ctx, handle, "123456")
	require.NoError(t, err)
	state, _ := machine.State()
	assert.Equal(t, phoneauth.Verified, state)

	sessions := &session.DefaultSessionService{
		Profiles:        f.profiles,
		IssueToken:      utils.GenerateToken,
		StartingCredits: 2,
		TokenTTL:        time.Hour,
		Now:             f.clock.Now,
	}
	signedIn, err := sessions.SignIn(ctx, identity, models.ProfileFields{})
	require.NoError(t, err)
	uid := signedIn.Profile.ID
	assert.Equal(t, int64(2), signedIn.Profile.RemainingGenerations)
	assert.Equal(t, "+15551234567", signedIn.Profile.PhoneNumber)

	req := f.uploadPair(t, uid)

	first, err := f.svc.Generate(ctx, uid, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.RemainingGenerations)
	assert.Equal(t, int64(1), first.TotalGenerations)
	list, err := f.svc.Lookbook(ctx, uid, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	second, err := f.svc.Generate(ctx, uid, req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.RemainingGenerations)
	assert.Equal(t, int64(2), second.TotalGenerations)

	downloads, calls := f.blobs.downloads, f.generator.calls
	_, err = f.svc.Generate(ctx, uid, req)
	assert.True(t, utils.IsKind(err, utils.KindInsufficientCredits))
	assert.Equal(t, downloads, f.blobs.downloads)
	assert.Equal(t, calls, f.generator.calls)

	p, err := f.profiles.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.RemainingGenerations)
	assert.Equal(t, int64(2), p.TotalGenerations)
}
