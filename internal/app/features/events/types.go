// internal/app/features/events/types.go
package eventsfeature

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	votestore "github.com/convenehq/convene/internal/app/store/votes"
	"github.com/convenehq/convene/internal/domain/models"
)

type createRequest struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Venue                string     `json:"venue"`
	SuggestedDate        *time.Time `json:"suggestedDate"`
	ExpectedParticipants int        `json:"expectedParticipants"`
}

type updateRequest struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	Venue                *string    `json:"venue"`
	SuggestedDate        *time.Time `json:"suggestedDate"`
	ExpectedParticipants *int       `json:"expectedParticipants"`
	Status               *string    `json:"status"`
}

type voteRequest struct {
	Type string `json:"type"`
}

type addTaskRequest struct {
	Title      string     `json:"title"`
	AssignedTo stringList `json:"assignedTo"`
	Deadline   *time.Time `json:"deadline"`
}

// stringList accepts either a single JSON string or an array of
// strings. Old clients sent a lone assignee id; the stored form is
// always an array.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = []string{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// eventView is what list and detail endpoints return: the event plus
// its vote tallies as user-id lists the client can test membership in.
type eventView struct {
	models.Event
	ProposedByName string   `json:"proposedByName,omitempty"`
	Upvotes        []string `json:"upvotes"`
	Downvotes      []string `json:"downvotes"`
}

// eventDetail adds the task list and discussion thread.
type eventDetail struct {
	eventView
	Tasks      []taskView    `json:"tasks"`
	Discussion []commentView `json:"discussion"`
}

type taskView struct {
	models.Task
	AssigneeNames []string `json:"assigneeNames,omitempty"`
}

type commentView struct {
	models.Comment
	Username string `json:"username,omitempty"`
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

func newEventView(e models.Event, tally votestore.Tally, proposerName string) eventView {
	return eventView{
		Event:          e,
		ProposedByName: proposerName,
		Upvotes:        hexIDs(tally.Up),
		Downvotes:      hexIDs(tally.Down),
	}
}
