package service

import (
	"context"
	"fmt"
	"time"

	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

// submitAt backdates a submission by shifting the suite clock.
func (s *ServiceSuite) submitAt(userID string, submittedAt time.Time) {
	saved := s.now
	s.now = submittedAt
	s.submit(userID)
	s.now = saved
}

func (s *ServiceSuite) TestListPendingReviewsPriorityBands() {
	base := s.now
	s.submitAt("user-critical", base.Add(-49*time.Hour))
	s.submitAt("user-high", base.Add(-30*time.Hour))
	s.submitAt("user-medium", base.Add(-13*time.Hour))
	s.submitAt("user-normal", base.Add(-1*time.Hour))

	reviews, err := s.svc.ListPendingReviews(context.Background(), 0, 0)
	s.Require().NoError(err)
	s.Require().Len(reviews, 4)

	s.Equal("user-critical", reviews[0].Record.UserID)
	s.Equal(models.PriorityCritical, reviews[0].Priority)
	s.Equal("user-high", reviews[1].Record.UserID)
	s.Equal(models.PriorityHigh, reviews[1].Priority)
	s.Equal("user-medium", reviews[2].Record.UserID)
	s.Equal(models.PriorityMedium, reviews[2].Priority)
	s.Equal("user-normal", reviews[3].Record.UserID)
	s.Equal(models.PriorityNormal, reviews[3].Priority)
	s.InDelta(49.0, reviews[0].HoursWaiting, 0.01)
}

func (s *ServiceSuite) TestListPendingReviewsExactThresholdIsLowerBand() {
	// A record at exactly 48 hours is HIGH; the band requires strictly more.
	s.submitAt("user-1", s.now.Add(-48*time.Hour))

	reviews, err := s.svc.ListPendingReviews(context.Background(), 0, 0)
	s.Require().NoError(err)
	s.Require().Len(reviews, 1)
	s.Equal(models.PriorityHigh, reviews[0].Priority)
}

func (s *ServiceSuite) TestListPendingReviewsOldestFirstWithinBand() {
	base := s.now
	s.submitAt("user-b", base.Add(-2*time.Hour))
	s.submitAt("user-a", base.Add(-5*time.Hour))
	s.submitAt("user-c", base.Add(-1*time.Hour))

	reviews, err := s.svc.ListPendingReviews(context.Background(), 0, 0)
	s.Require().NoError(err)
	s.Require().Len(reviews, 3)
	s.Equal("user-a", reviews[0].Record.UserID)
	s.Equal("user-b", reviews[1].Record.UserID)
	s.Equal("user-c", reviews[2].Record.UserID)
}

func (s *ServiceSuite) TestListPendingReviewsExcludesReviewedRecords() {
	s.submit("user-1")
	s.submit("user-2")
	s.approve("user-1")

	reviews, err := s.svc.ListPendingReviews(context.Background(), 0, 0)
	s.Require().NoError(err)
	s.Require().Len(reviews, 1)
	s.Equal("user-2", reviews[0].Record.UserID)
}

func (s *ServiceSuite) TestListPendingReviewsPagination() {
	base := s.now
	for i := 0; i < 5; i++ {
		s.submitAt(fmt.Sprintf("user-%d", i), base.Add(-time.Duration(5-i)*time.Hour))
	}

	page, err := s.svc.ListPendingReviews(context.Background(), 2, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("user-2", page[0].Record.UserID)
	s.Equal("user-3", page[1].Record.UserID)
}

func (s *ServiceSuite) TestCountPendingReviews() {
	s.submit("user-1")
	s.submit("user-2")
	s.approve("user-1")

	count, err := s.svc.CountPendingReviews(context.Background())
	s.Require().NoError(err)
	s.Equal(1, count)
}
