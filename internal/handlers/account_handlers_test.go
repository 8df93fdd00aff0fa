package handlers_test

import (
	"net/http"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func regexpQuote(s string) string { return regexp.QuoteMeta(s) }

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

var userColumns = []string{"id", "email", "password_hash", "first_name", "last_name", "phone", "role", "loyalty_points", "created_at", "updated_at"}

func TestRegister(t *testing.T) {
	s := newServer(t)
	s.mock.ExpectExec(regexpQuote("INSERT INTO users")).WillReturnResult(sqlmock.NewResult(12, 1))

	w := s.do(t, http.MethodPost, "/api/auth/register",
		`{"email":"asha@example.com","password":"secret1","firstName":"Asha","lastName":"Rai"}`, 0)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	claims, err := s.tokens.ValidateToken(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, "customer", claims.Role)

	user := body["user"].(map[string]any)
	assert.NotContains(t, user, "passwordHash")
	assert.Equal(t, "customer", user["role"])
}

func TestRegisterRejects(t *testing.T) {
	t.Run("taken email", func(t *testing.T) {
		s := newServer(t)
		s.mock.ExpectExec(regexpQuote("INSERT INTO users")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		w := s.do(t, http.MethodPost, "/api/auth/register",
			`{"email":"asha@example.com","password":"secret1","firstName":"Asha","lastName":"Rai"}`, 0)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		s := newServer(t)
		w := s.do(t, http.MethodPost, "/api/auth/register",
			`{"email":"asha@example.com","password":"123","firstName":"Asha","lastName":"Rai"}`, 0)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		want     int
	}{
		{"right password", "secret1", http.StatusOK},
		{"wrong password", "secret2", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(t)
			now := time.Now()
			s.mock.ExpectQuery(regexpQuote("FROM users WHERE email = ?")).
				WithArgs("asha@example.com").
				WillReturnRows(sqlmock.NewRows(userColumns).
					AddRow(12, "asha@example.com", string(hash), "Asha", "Rai", nil, "manager", 40, now, now))

			w := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"asha@example.com","password":"`+tc.password+`"}`, 0)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
			if tc.want == http.StatusOK {
				claims, err := s.tokens.ValidateToken(decode(t, w)["token"].(string))
				require.NoError(t, err)
				assert.Equal(t, "manager", claims.Role)
			}
		})
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	s := newServer(t)
	s.mock.ExpectQuery(regexpQuote("FROM users WHERE email = ?")).WillReturnRows(sqlmock.NewRows(userColumns))

	w := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"ghost@example.com","password":"whatever"}`, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCart(t *testing.T) {
	s := newServer(t)
	s.mock.ExpectQuery(regexpQuote("FROM cart_items ci")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "name", "price", "discount_price", "stock_quantity", "is_active", "quantity"}).
			AddRow(1, 1, "Gold Hoop", "1000.00", "800.00", 5, true, 2).
			AddRow(2, 4, "Pearl Stud", "150.00", nil, 9, true, 1))

	w := s.do(t, http.MethodGet, "/api/cart", "", 7)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "1750.00", body["subtotal"])
	assert.Equal(t, float64(2), body["itemCount"])
}

func TestAddToCartOutOfStock(t *testing.T) {
	s := newServer(t)
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexpQuote("SELECT stock_quantity FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow(1))
	s.mock.ExpectQuery(regexpQuote("SELECT quantity FROM cart_items")).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}))
	s.mock.ExpectRollback()

	w := s.do(t, http.MethodPost, "/api/cart", `{"productId":1,"quantity":2}`, 7)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestDeleteAddressNotOwned(t *testing.T) {
	s := newServer(t)
	s.mock.ExpectExec(regexpQuote("DELETE FROM addresses WHERE id = ? AND user_id = ?")).
		WithArgs(int64(31), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := s.do(t, http.MethodDelete, "/api/users/addresses/31", "", 7)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAddressValidation(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodPost, "/api/users/addresses", `{"fullName":"Asha Rai"}`, 7)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
