package seed

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/housecup/internal/adapters/http/api"
	service "github.com/okian/housecup/internal/app"
	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/results"
	"github.com/okian/housecup/internal/domain/types"
	"github.com/okian/housecup/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	logger.SetOutput(io.Discard)
}

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:         baseURL,
		Houses:          4,
		Categories:      2,
		PlayersPerHouse: 3,
		Events:          30,
		GroupRatio:      0.3,
		ReplayRatio:     0.2,
		Workers:         4,
		Timeout:         5 * time.Second,
		SettleTimeout:   5 * time.Second,
		Seed:            7,
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator configuration", t, func() {
		cfg := testConfig("")

		Convey("When generating a competition", func() {
			comp := Generate(cfg)

			Convey("Then the roster should have the requested size", func() {
				So(comp.Houses, ShouldHaveLength, 4)
				So(comp.Categories, ShouldHaveLength, 2)
				So(comp.Players, ShouldHaveLength, 4*2*3)
				So(comp.Events, ShouldHaveLength, 30)
			})

			Convey("Then every event should validate and have acceptable results", func() {
				houses := map[string]bool{}
				for _, h := range comp.Houses {
					houses[h.ID] = true
				}
				playerCategory := map[string]string{}
				for _, p := range comp.Players {
					playerCategory[p.ID] = p.CategoryID
				}
				for _, e := range comp.Events {
					So(model.Validate(e), ShouldBeNil)
					committed, err := results.Validate(e.Schedule, comp.Results[e.ID], results.WithStrictPlacements())
					So(err, ShouldBeNil)
					for _, r := range committed {
						if e.Type == model.EventGroup {
							So(houses[r.ParticipantID], ShouldBeTrue)
						} else {
							So(playerCategory[r.ParticipantID], ShouldEqual, e.CategoryID)
						}
					}
				}
			})

			Convey("Then the same seed should give the same structure", func() {
				again := Generate(cfg)
				So(len(again.Events), ShouldEqual, len(comp.Events))
				for i := range comp.Events {
					So(again.Events[i].Type, ShouldEqual, comp.Events[i].Type)
					So(again.Events[i].Schedule, ShouldResemble, comp.Events[i].Schedule)
				}
			})
		})

		Convey("When there are more houses than names", func() {
			cfg.Houses = len(houseNames) + 2
			comp := Generate(cfg)

			Convey("Then house names should stay unique", func() {
				seen := map[string]bool{}
				for _, h := range comp.Houses {
					So(seen[model.NormalizeName(h.Name)], ShouldBeFalse)
					seen[model.NormalizeName(h.Name)] = true
				}
			})
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given expected standings", t, func() {
		want := []types.Standing{
			{Rank: 1, HouseID: "a", Score: 9},
			{Rank: 2, HouseID: "b", Score: 3},
		}

		Convey("Then identical standings should verify", func() {
			So(verify(want, []types.Standing{want[0], want[1]}), ShouldBeNil)
		})

		Convey("Then a swapped order should be a mismatch", func() {
			err := verify(want, []types.Standing{want[1], want[0]})
			So(errors.Is(err, ErrMismatch), ShouldBeTrue)
		})

		Convey("Then a missing house should be a mismatch", func() {
			So(errors.Is(verify(want, want[:1]), ErrMismatch), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running scoreboard server", t, func() {
		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When seeding it", func() {
			cfg := testConfig(srv.URL)
			cfg.OutputFile = filepath.Join(t.TempDir(), "out", "competition.json")
			stats, err := Run(ctx, cfg)

			Convey("Then the served ranking should match the local aggregation", func() {
				So(err, ShouldBeNil)
				So(stats.Commits, ShouldEqual, 30)
				So(stats.Replays, ShouldBeGreaterThan, 0)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.RankingRevision, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the server is unreachable", func() {
			cfg := testConfig("http://127.0.0.1:1")
			cfg.Timeout = time.Second
			_, err := Run(ctx, cfg)

			Convey("Then the health check should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "health check")
			})
		})
	})
}
