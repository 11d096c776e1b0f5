package results_test

import (
	"errors"
	"testing"

	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/results"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	Convey("Given the result validator", t, func() {
		schedule := model.ScoringSchedule{1: 100, 2: 50, 3: 25}

		Convey("When every placement is unassigned", func() {
			committed, err := results.Validate(schedule, []model.EventResult{{Placement: 1, ParticipantID: ""}})

			Convey("Then it should reject the commit as empty", func() {
				So(errors.Is(err, results.ErrEmptyAssignment), ShouldBeTrue)
				So(committed, ShouldBeNil)
			})
		})

		Convey("When there are no provisional entries at all", func() {
			_, err := results.Validate(schedule, nil)

			Convey("Then it should reject the commit as empty", func() {
				So(errors.Is(err, results.ErrEmptyAssignment), ShouldBeTrue)
			})
		})

		Convey("When a participant id is only whitespace", func() {
			_, err := results.Validate(schedule, []model.EventResult{{Placement: 1, ParticipantID: "   "}})

			Convey("Then it should count as unassigned", func() {
				So(errors.Is(err, results.ErrEmptyAssignment), ShouldBeTrue)
			})
		})

		Convey("When one participant takes two placements", func() {
			_, err := results.Validate(model.ScoringSchedule{1: 100, 2: 50}, []model.EventResult{
				{Placement: 1, ParticipantID: "P1"},
				{Placement: 2, ParticipantID: "P1"},
			})

			Convey("Then it should reject the duplicate", func() {
				So(errors.Is(err, results.ErrDuplicateParticipant), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "P1")
			})
		})

		Convey("When some placements are left empty", func() {
			provisional := []model.EventResult{
				{Placement: 1, ParticipantID: "P1"},
				{Placement: 2, ParticipantID: ""},
				{Placement: 3, ParticipantID: "P3"},
			}
			committed, err := results.Validate(schedule, provisional)

			Convey("Then it should commit only the assigned ones in order", func() {
				So(err, ShouldBeNil)
				So(committed, ShouldResemble, []model.EventResult{
					{Placement: 1, ParticipantID: "P1"},
					{Placement: 3, ParticipantID: "P3"},
				})
			})

			Convey("Then the committed slice should not alias the input", func() {
				committed[0].ParticipantID = "changed"
				So(provisional[0].ParticipantID, ShouldEqual, "P1")
			})
		})

		Convey("When a placement is missing from the schedule", func() {
			provisional := []model.EventResult{{Placement: 7, ParticipantID: "P1"}}

			Convey("Then the default mode should accept it", func() {
				committed, err := results.Validate(schedule, provisional)
				So(err, ShouldBeNil)
				So(len(committed), ShouldEqual, 1)
			})

			Convey("Then strict mode should reject it", func() {
				_, err := results.Validate(schedule, provisional, results.WithStrictPlacements())
				So(errors.Is(err, results.ErrUnknownPlacement), ShouldBeTrue)
			})
		})

		Convey("When the schedule is nil", func() {
			Convey("Then validation should still work without panicking", func() {
				committed, err := results.Validate(nil, []model.EventResult{{Placement: 1, ParticipantID: "H1"}})
				So(err, ShouldBeNil)
				So(len(committed), ShouldEqual, 1)
			})
		})

		Convey("When participant ids are unknown to the roster", func() {
			committed, err := results.Validate(schedule, []model.EventResult{{Placement: 1, ParticipantID: "ghost"}})

			Convey("Then they should be accepted structurally", func() {
				So(err, ShouldBeNil)
				So(committed[0].ParticipantID, ShouldEqual, "ghost")
			})
		})

		Convey("When participant ids carry surrounding spaces", func() {
			committed, err := results.Validate(schedule, []model.EventResult{
				{Placement: 1, ParticipantID: " P1"},
				{Placement: 2, ParticipantID: "P1 "},
			})

			Convey("Then they should be trimmed before the duplicate check", func() {
				So(committed, ShouldBeNil)
				So(errors.Is(err, results.ErrDuplicateParticipant), ShouldBeTrue)
			})
		})
	})
}
