package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/data/redisStore"
	"github.com/clearpathhq/supportbot/internal/data/store"
	"github.com/clearpathhq/supportbot/internal/domain/jobModel"
)

func newTestJobStore(t *testing.T) (*store.RedisJobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestJobStore(redisStore.NewTestStore(client)), mr
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	jobStore, mr := newTestJobStore(t)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:      jobID,
		JobType: jobModel.JobTypeIngest,
		Status:  jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			DocName:    "handbook.pdf",
			StoredPath: "/tmp/handbook.pdf",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if retrievedJob.JobPayload.DocName != testJob.JobPayload.DocName {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.JobPayload.DocName, testJob.JobPayload.DocName)
		}
		if retrievedJob.Status != jobModel.JobStatusRunning {
			t.Errorf("Status got %v, want %v", retrievedJob.Status, jobModel.JobStatusRunning)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})

	t.Run("Jobs Expire", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
		mr.FastForward(config.RedisJobStoreTTL + time.Minute)
		if _, found := jobStore.GetJob(ctx, jobID); found {
			t.Error("Job should be gone after its TTL elapses")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	jobStore, _ := newTestJobStore(t)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()
}

func TestInMemoryJobStore(t *testing.T) {
	s := store.InitInMemoryJobStore()
	ctx := context.Background()

	job := jobModel.Job{Id: "mem-1", Status: jobModel.JobStatusQueued}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	got, found := s.GetJob(ctx, "mem-1")
	if !found || got.Status != jobModel.JobStatusQueued {
		t.Errorf("GetJob got %+v, found=%v", got, found)
	}

	s.DeleteJob(ctx, "mem-1")
	if _, found := s.GetJob(ctx, "mem-1"); found {
		t.Error("Job still present after delete")
	}
}
