package queue

import (
	"time"

	"github.com/mickamy/jsonapi-hydrator/jsonapi"
)

// ResourceType is the JSON:API type of a serialized job.
const ResourceType = "queue-jobs"

// TimeFormat renders job timestamps with microseconds and a numeric zone.
const TimeFormat = "2006-01-02T15:04:05.000000-07:00"

// SelfLink returns the job's own URL, nested under the resource type it
// works for: {base}/{resource-type}/queue-jobs/{id}.
func SelfLink(job *ClientJob, urls jsonapi.URLs) string {
	return urls.Resource(job.ResourceType+"/"+ResourceType, job.ID.String())
}

// Resource serializes a job. The "resource" relationship carries links
// even before the job has produced anything.
func Resource(job *ClientJob, urls jsonapi.URLs) jsonapi.ResourceObject {
	self := SelfLink(job, urls)

	var timeout any
	if job.Timeout != nil {
		timeout = int(*job.Timeout / time.Second)
	}

	return jsonapi.ResourceObject{
		Type: ResourceType,
		ID:   job.ID.String(),
		Attributes: map[string]any{
			"attempts":      job.Attempts,
			"created-at":    job.CreatedAt.Format(TimeFormat),
			"completed-at":  formatTime(job.CompletedAt),
			"failed":        job.Failed,
			"resource-type": job.ResourceType,
			"timeout":       timeout,
			"timeout-at":    formatTime(job.TimeoutAt),
			"tries":         job.Tries,
			"updated-at":    job.UpdatedAt.Format(TimeFormat),
		},
		Relationships: map[string]jsonapi.RelationshipObject{
			"resource": {Links: jsonapi.RelationshipLinks(self, "resource")},
		},
		Links: map[string]string{"self": self},
	}
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(TimeFormat)
}
