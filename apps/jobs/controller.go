package jobs

import (
	"github.com/getevo/evo/v2"

	"github.com/teamcapacity/capacity-backend/lib/response"
)

// JobInfo describes a registered job and its last known state
type JobInfo struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Schedule      string        `json:"schedule"`
	Enabled       bool          `json:"enabled"`
	LastExecution *JobExecution `json:"last_execution,omitempty"`
}

// GetJobs returns all registered jobs with their last execution
// GET /api/admin/jobs
func GetJobs(request *evo.Request) any {
	s := GetScheduler()
	if s == nil {
		return response.OK([]JobInfo{})
	}

	jobs := s.GetJobs()
	infos := make([]JobInfo, 0, len(jobs))
	for _, job := range jobs {
		info := JobInfo{
			Name:        job.Name,
			Description: job.Description,
			Schedule:    job.Schedule,
			Enabled:     job.Enabled,
		}
		if last, err := s.GetLastExecution(job.Name); err == nil {
			info.LastExecution = last
		}
		infos = append(infos, info)
	}

	return response.List(infos, len(infos))
}

// GetJobExecutions returns recent job executions, optionally filtered by job name
// GET /api/admin/jobs/executions
func GetJobExecutions(request *evo.Request) any {
	s := GetScheduler()
	if s == nil {
		return response.List([]JobExecution{}, 0)
	}

	jobName := request.Query("job").String()
	limit := request.Query("limit").Int()
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	executions, err := s.GetRecentExecutions(jobName, limit)
	if err != nil {
		return response.ErrDatabaseError.Response()
	}

	return response.List(executions, len(executions))
}

// RunJob triggers immediate execution of a job
// POST /api/admin/jobs/:name/run
func RunJob(request *evo.Request) any {
	s := GetScheduler()
	if s == nil {
		return response.InternalError("Job scheduler is not running")
	}

	jobName := request.Param("name").String()
	if _, exists := s.GetJobs()[jobName]; !exists {
		return response.NotFound("Job not found")
	}

	if err := s.RunNow(jobName); err != nil {
		return response.BadRequest(err.Error())
	}

	return response.Message("Job " + jobName + " triggered")
}
