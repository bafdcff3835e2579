// internal/services/review_service_test.go
package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
)

func TestCreateReviewSecondReviewConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReviewService(db)

	userID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE .*id = \$1 AND status = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}).
			AddRow(productID.String(), "Walnut Desk Organizer", "ACTIVE"))
	mock.ExpectQuery(`SELECT \* FROM "reviews" WHERE .*user_id = \$1 AND product_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "rating"}).
			AddRow(uuid.NewString(), userID.String(), productID.String(), 4))

	_, err := svc.CreateReview(userID, productID, &CreateReviewRequest{Rating: 5})

	var cerr *apperrors.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "you have already reviewed this product", cerr.Error())

	// The conflict is detected before any write.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewRequiresActiveProduct(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReviewService(db)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE .*id = \$1 AND status = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.CreateReview(uuid.New(), uuid.New(), &CreateReviewRequest{Rating: 5})

	var nerr *apperrors.NotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewVerifiedFromDeliveredOrder(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReviewService(db)

	userID := uuid.New()
	productID := uuid.New()
	reviewID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE .*id = \$1 AND status = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}).
			AddRow(productID.String(), "Walnut Desk Organizer", "ACTIVE"))
	mock.ExpectQuery(`SELECT \* FROM "reviews" WHERE .*user_id = \$1 AND product_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "order_items" JOIN orders`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "reviews"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(reviewID.String()))
	mock.ExpectQuery(`SELECT COALESCE\(AVG\(rating\), 0\) AS avg, COUNT\(\*\) AS count FROM "reviews"`).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(5.0, 1))
	mock.ExpectExec(`UPDATE "products" SET "rating"=\$1,"review_count"=\$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM "reviews" WHERE "reviews"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "rating", "is_verified"}).
			AddRow(reviewID.String(), userID.String(), productID.String(), 5, true))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
			AddRow(userID.String(), "dana"))

	review, err := svc.CreateReview(userID, productID, &CreateReviewRequest{Rating: 5, Title: "Solid"})
	require.NoError(t, err)
	assert.True(t, review.IsVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}
