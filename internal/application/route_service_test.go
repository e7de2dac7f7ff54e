package application

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swharr/TrailblazerAI-sub001/internal/domain"
	routeDomain "github.com/swharr/TrailblazerAI-sub001/internal/domain/route"
	"github.com/swharr/TrailblazerAI-sub001/internal/events"
	"github.com/swharr/TrailblazerAI-sub001/internal/gpx"
	"go.uber.org/zap"
)

// fakeRouteRepo is an in-memory route.Repository for service tests.
type fakeRouteRepo struct {
	routes map[uuid.UUID]*routeDomain.Route
}

func newFakeRouteRepo() *fakeRouteRepo {
	return &fakeRouteRepo{routes: make(map[uuid.UUID]*routeDomain.Route)}
}

func (f *fakeRouteRepo) FindByID(_ context.Context, id uuid.UUID) (*routeDomain.Route, error) {
	rt, ok := f.routes[id]
	if !ok {
		return nil, domain.NewNotFoundError("Route", id.String())
	}
	return rt, nil
}

func (f *fakeRouteRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, page, limit int) ([]*routeDomain.Route, int64, error) {
	var out []*routeDomain.Route
	for _, rt := range f.routes {
		if rt.OwnerID() == ownerID {
			out = append(out, rt)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRouteRepo) ListAll(_ context.Context, page, limit int) ([]*routeDomain.Route, int64, error) {
	var out []*routeDomain.Route
	for _, rt := range f.routes {
		out = append(out, rt)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRouteRepo) CountBySource(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, rt := range f.routes {
		counts[string(rt.Source())]++
	}
	return counts, nil
}

func (f *fakeRouteRepo) Save(_ context.Context, rt *routeDomain.Route) error {
	f.routes[rt.ID()] = rt
	return nil
}

func (f *fakeRouteRepo) Update(_ context.Context, rt *routeDomain.Route) error {
	if _, ok := f.routes[rt.ID()]; !ok {
		return domain.NewNotFoundError("Route", rt.ID().String())
	}
	f.routes[rt.ID()] = rt
	return nil
}

func (f *fakeRouteRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.routes[id]; !ok {
		return domain.NewNotFoundError("Route", id.String())
	}
	delete(f.routes, id)
	return nil
}

// recordingPublisher captures published events instead of hitting Kafka.
type recordingPublisher struct {
	published []events.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event events.CloudEvent) error {
	p.published = append(p.published, event)
	return nil
}

func newRouteService() (*RouteService, *fakeRouteRepo, *recordingPublisher) {
	repo := newFakeRouteRepo()
	pub := &recordingPublisher{}
	return NewRouteService(repo, pub, zap.NewNop()), repo, pub
}

func TestCreateRoute_PublishesRouteCreated(t *testing.T) {
	svc, _, pub := newRouteService()
	ownerID := uuid.New()

	dto, err := svc.CreateRoute(context.Background(), ownerID, CreateRouteRequest{
		Name: "Alpine Loop",
		Waypoints: []gpx.Waypoint{
			{Lat: 38.5, Lng: -106.0, Name: "Trailhead", Type: gpx.TypeStart},
			{Lat: 38.51, Lng: -106.01},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Alpine Loop", dto.Name)
	assert.Equal(t, "planned", dto.Source)
	assert.True(t, dto.IncludeTrack)

	require.Len(t, pub.published, 1)
	assert.Equal(t, events.RouteCreated, pub.published[0].Type)
}

func TestCreateRoute_RejectsUnknownSource(t *testing.T) {
	svc, _, _ := newRouteService()

	_, err := svc.CreateRoute(context.Background(), uuid.New(), CreateRouteRequest{
		Name:   "Bad Source",
		Source: "synthesized",
	})
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestGetRoute_EnforcesOwnership(t *testing.T) {
	svc, _, _ := newRouteService()
	ownerID := uuid.New()

	dto, err := svc.CreateRoute(context.Background(), ownerID, CreateRouteRequest{Name: "Private"})
	require.NoError(t, err)

	_, err = svc.GetRoute(context.Background(), dto.ID, uuid.New())
	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	got, err := svc.GetRoute(context.Background(), dto.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, got.ID)
}

func TestUpdateRoute_PartialUpdate(t *testing.T) {
	svc, _, _ := newRouteService()
	ownerID := uuid.New()

	dto, err := svc.CreateRoute(context.Background(), ownerID, CreateRouteRequest{
		Name:        "Alpine Loop",
		Description: "original",
	})
	require.NoError(t, err)

	newName := "Engineer Pass"
	updated, err := svc.UpdateRoute(context.Background(), dto.ID, ownerID, UpdateRouteRequest{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Engineer Pass", updated.Name)
	assert.Equal(t, "original", updated.Description)
	assert.Equal(t, dto.Version+1, updated.Version)
}

func TestDeleteRoute_EnforcesOwnership(t *testing.T) {
	svc, repo, _ := newRouteService()
	ownerID := uuid.New()

	dto, err := svc.CreateRoute(context.Background(), ownerID, CreateRouteRequest{Name: "Doomed"})
	require.NoError(t, err)

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, svc.DeleteRoute(context.Background(), dto.ID, uuid.New()), &forbidden)

	require.NoError(t, svc.DeleteRoute(context.Background(), dto.ID, ownerID))
	assert.Empty(t, repo.routes)
}

func TestExportGPX_ReturnsDocumentAndFilename(t *testing.T) {
	svc, _, pub := newRouteService()
	ownerID := uuid.New()

	dto, err := svc.CreateRoute(context.Background(), ownerID, CreateRouteRequest{
		Name: "Imogene Pass Road!",
		Waypoints: []gpx.Waypoint{
			{Lat: 37.93, Lng: -107.75, Name: "Start", Type: gpx.TypeStart},
			{Lat: 37.94, Lng: -107.76, Name: "End", Type: gpx.TypeEnd},
		},
	})
	require.NoError(t, err)

	export, err := svc.ExportGPX(context.Background(), dto.ID, ownerID)
	require.NoError(t, err)

	assert.Equal(t, "imogene-pass-road.gpx", export.Filename)
	assert.Contains(t, export.Content, `<gpx version="1.1"`)
	assert.Contains(t, export.Content, "<rte>")

	var exported int
	for _, ce := range pub.published {
		if ce.Type == events.RouteExported {
			exported++
		}
	}
	assert.Equal(t, 1, exported)
}

func TestImportGPX_FlattensTrackPoints(t *testing.T) {
	svc, _, _ := newRouteService()
	ownerID := uuid.New()

	doc := `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <wpt lat="37.93" lon="-107.75"><ele>2900</ele><name>Camp</name><type>campsite</type></wpt>
  <trk><name>Imogene</name><trkseg>
    <trkpt lat="37.931" lon="-107.751"><ele>2910</ele></trkpt>
    <trkpt lat="37.932" lon="-107.752"><ele>2925</ele></trkpt>
  </trkseg></trk>
</gpx>`

	dto, err := svc.ImportGPX(context.Background(), ownerID, "", strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "imported", dto.Source)
	require.Len(t, dto.Waypoints, 3)
	assert.Equal(t, "Camp", dto.Waypoints[0].Name)
	assert.Equal(t, "campsite", dto.Waypoints[0].Type)
	require.NotNil(t, dto.Waypoints[1].Elevation)
	assert.Equal(t, 2910.0, *dto.Waypoints[1].Elevation)
}

func TestImportGPX_RejectsEmptyAndMalformed(t *testing.T) {
	svc, _, _ := newRouteService()
	var valErr *domain.ValidationError

	empty := `<?xml version="1.0"?><gpx version="1.1" creator="t" xmlns="http://www.topografix.com/GPX/1/1"></gpx>`
	_, err := svc.ImportGPX(context.Background(), uuid.New(), "Empty", strings.NewReader(empty))
	require.ErrorAs(t, err, &valErr)

	_, err = svc.ImportGPX(context.Background(), uuid.New(), "Broken", strings.NewReader("not xml at all"))
	require.ErrorAs(t, err, &valErr)
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Alpine Loop", "alpine-loop"},
		{"Moab -- Hell's Revenge!!", "moab-hell-s-revenge"},
		{"  trailing  ", "trailing"},
		{"___", "route"},
		{"", "route"},
		{"Route66", "route66"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFilename(tc.in), "input %q", tc.in)
	}
}

func TestGetRouteStats_CountsBySource(t *testing.T) {
	svc, _, _ := newRouteService()

	_, err := svc.CreateRoute(context.Background(), uuid.New(), CreateRouteRequest{Name: "A"})
	require.NoError(t, err)
	_, err = svc.CreateRoute(context.Background(), uuid.New(), CreateRouteRequest{Name: "B", Source: "recorded"})
	require.NoError(t, err)

	stats, err := svc.GetRouteStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalRoutes)
	assert.Equal(t, int64(1), stats.BySource["planned"])
	assert.Equal(t, int64(1), stats.BySource["recorded"])
}
