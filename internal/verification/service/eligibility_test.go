package service

import (
	"context"

	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
	dErrors "github.com/profullstack/food-delivery-multivendor/pkg/domain-errors"
)

func restricted(t models.RestrictedItemType) *models.RestrictedItemType {
	return &t
}

func (s *ServiceSuite) tobaccoItem(id string) models.CartItem {
	return models.CartItem{ItemID: id, RestrictedType: restricted(models.RestrictedTobacco)}
}

func (s *ServiceSuite) approve(userID string) {
	_, err := s.svc.Review(context.Background(), userID, "admin-1", models.DecisionVerified, "", nil)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestEvaluateCartNoRecordBlocksRestrictedItems() {
	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		s.tobaccoItem("cigs-1"),
	})
	s.Require().NoError(err)
	s.True(evaluation.Blocked)
	s.Require().Len(evaluation.Warnings, 1)
	s.Equal(models.WarningVerificationRequired, evaluation.Warnings[0].Type)
	s.Equal("cigs-1", evaluation.Warnings[0].ItemID)
}

func (s *ServiceSuite) TestEvaluateCartUnrestrictedItemsNeverBlocked() {
	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		{ItemID: "pizza-1"},
		{ItemID: "soda-1"},
	})
	s.Require().NoError(err)
	s.False(evaluation.Blocked)
	s.Empty(evaluation.Warnings)
}

func (s *ServiceSuite) TestEvaluateCartPendingVerification() {
	s.submit("user-1")
	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		s.tobaccoItem("cigs-1"),
	})
	s.Require().NoError(err)
	s.True(evaluation.Blocked)
	s.Equal(models.WarningVerificationPending, evaluation.Warnings[0].Type)
}

func (s *ServiceSuite) TestEvaluateCartRejectedVerification() {
	s.submit("user-1")
	_, err := s.svc.Review(context.Background(), "user-1", "admin-1", models.DecisionRejected, "blurry", nil)
	s.Require().NoError(err)

	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		s.tobaccoItem("cigs-1"),
	})
	s.Require().NoError(err)
	s.True(evaluation.Blocked)
	s.Equal(models.WarningVerificationRejected, evaluation.Warnings[0].Type)
}

func (s *ServiceSuite) TestEvaluateCartVerifiedAdultAllowed() {
	s.submit("user-1")
	s.approve("user-1")

	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		s.tobaccoItem("cigs-1"),
		{ItemID: "wine-1", RestrictedType: restricted(models.RestrictedAlcohol)},
		{ItemID: "pizza-1"},
	})
	s.Require().NoError(err)
	s.False(evaluation.Blocked)
	s.Empty(evaluation.Warnings)
}

func (s *ServiceSuite) TestEvaluateCartLazyExpiryBlocksStaleVerification() {
	s.submit("user-1")
	s.approve("user-1")

	// One day past expiry; the sweeper has not run, the record still reads
	// VERIFIED, and checkout must still block.
	s.now = s.now.AddDate(0, defaultExpiryMonths, 1)
	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		s.tobaccoItem("cigs-1"),
	})
	s.Require().NoError(err)
	s.True(evaluation.Blocked)
	s.Equal(models.WarningVerificationExpired, evaluation.Warnings[0].Type)
}

func (s *ServiceSuite) TestEvaluateCartExpiredStatus() {
	s.submit("user-1")
	s.approve("user-1")
	changed, err := s.store.MarkExpired(context.Background(), "user-1", s.now.AddDate(0, defaultExpiryMonths, 1))
	s.Require().NoError(err)
	s.Require().True(changed)

	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		s.tobaccoItem("cigs-1"),
	})
	s.Require().NoError(err)
	s.True(evaluation.Blocked)
	s.Equal(models.WarningVerificationExpired, evaluation.Warnings[0].Type)
}

func (s *ServiceSuite) TestEvaluateCartVerifiedNineteenYearOldBlockedByAgeFloor() {
	dob := s.now.AddDate(-19, 0, 0)
	_, err := s.svc.Submit(context.Background(), "user-1", jpegDoc(), "id.jpg", models.DocumentStateID, dob)
	s.Require().NoError(err)
	s.approve("user-1")

	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		s.tobaccoItem("cigs-1"),
	})
	s.Require().NoError(err)
	s.True(evaluation.Blocked)
	s.Equal(models.WarningAgeRestriction, evaluation.Warnings[0].Type)
}

func (s *ServiceSuite) TestEvaluateCartItemMinimumAgeCannotLowerLegalFloor() {
	dob := s.now.AddDate(-19, 0, 0)
	_, err := s.svc.Submit(context.Background(), "user-1", jpegDoc(), "id.jpg", models.DocumentStateID, dob)
	s.Require().NoError(err)
	s.approve("user-1")

	item := s.tobaccoItem("cigs-1")
	item.MinimumAge = 18
	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{item})
	s.Require().NoError(err)
	s.True(evaluation.Blocked)
	s.Equal(models.WarningAgeRestriction, evaluation.Warnings[0].Type)
}

func (s *ServiceSuite) TestEvaluateCartItemMinimumAgeCanRaiseFloor() {
	dob := s.now.AddDate(-22, 0, 0)
	_, err := s.svc.Submit(context.Background(), "user-1", jpegDoc(), "id.jpg", models.DocumentStateID, dob)
	s.Require().NoError(err)
	s.approve("user-1")

	item := s.tobaccoItem("cigs-1")
	item.MinimumAge = 25
	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{item})
	s.Require().NoError(err)
	s.True(evaluation.Blocked)
	s.Equal(models.WarningAgeRestriction, evaluation.Warnings[0].Type)
}

func (s *ServiceSuite) TestEvaluateCartWarnsPerItem() {
	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		s.tobaccoItem("cigs-1"),
		{ItemID: "wine-1", RestrictedType: restricted(models.RestrictedAlcohol)},
		{ItemID: "pizza-1"},
	})
	s.Require().NoError(err)
	s.True(evaluation.Blocked)
	s.Len(evaluation.Warnings, 2)
	for _, w := range evaluation.Warnings {
		s.NotEqual("pizza-1", w.ItemID)
	}
}

func (s *ServiceSuite) TestEvaluateCartRejectsUnknownRestrictedType() {
	bogus := models.RestrictedItemType("FIREWORKS")
	_, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		{ItemID: "boom-1", RestrictedType: &bogus},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestEvaluateCartEmptyCart() {
	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", nil)
	s.Require().NoError(err)
	s.False(evaluation.Blocked)
	s.Empty(evaluation.Warnings)
}

func (s *ServiceSuite) TestEvaluateCartTwentyFirstBirthdayToday() {
	dob := s.now.AddDate(-21, 0, 0)
	_, err := s.svc.Submit(context.Background(), "user-1", jpegDoc(), "id.jpg", models.DocumentStateID, dob)
	s.Require().NoError(err)
	s.approve("user-1")

	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		s.tobaccoItem("cigs-1"),
	})
	s.Require().NoError(err)
	s.False(evaluation.Blocked)
}

func (s *ServiceSuite) TestEvaluateCartIgnoredExpiredRecordOfOtherUser() {
	s.submit("user-2")
	evaluation, err := s.svc.EvaluateCart(context.Background(), "user-1", []models.CartItem{
		s.tobaccoItem("cigs-1"),
	})
	s.Require().NoError(err)
	s.Equal(models.WarningVerificationRequired, evaluation.Warnings[0].Type)
}
