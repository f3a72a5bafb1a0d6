package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/glintmarket/storefront/internal/handlers"
	"github.com/glintmarket/storefront/internal/hash"
	"github.com/glintmarket/storefront/internal/middleware/auth"
	"github.com/glintmarket/storefront/internal/models"
	"github.com/glintmarket/storefront/internal/service/token"
	httpserver "github.com/glintmarket/storefront/internal/transport/http"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *token.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	tokens := &token.Service{Secret: []byte("test-secret")}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		Auth:                &auth.Middleware{DB: db, Tokens: tokens},
		AuthHandler:         &handlers.AuthHandler{DB: db, Tokens: tokens},
		CatalogHandler:      &handlers.CatalogHandler{DB: db},
		ProductHandler:      &handlers.ProductHandler{DB: db},
		ReviewHandler:       &handlers.ReviewHandler{DB: db},
		AddressHandler:      &handlers.AddressHandler{DB: db},
		UserHandler:         &handlers.UserHandler{DB: db},
		OrderHandler:        &handlers.OrderHandler{DB: db},
		NotificationHandler: &handlers.NotificationHandler{DB: db},
		SearchHandler:       &handlers.SearchHandler{},
	})

	return &testEnv{T: t, E: e, DB: db, Tokens: tokens}
}

// do runs a request through the full router, middleware included.
func (env *testEnv) do(method, path string, body any, bearer string) *httptest.ResponseRecorder {
	env.T.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder, out any) {
	env.T.Helper()
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), out))
}

// createUser inserts a user directly and returns it with a valid token.
func (env *testEnv) createUser(name, email, role string) (*models.User, string) {
	env.T.Helper()

	pwHash, err := hash.HashPassword("password")
	require.NoError(env.T, err)

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)

	signed, err := env.Tokens.Issue(user.ID)
	require.NoError(env.T, err)
	return &user, signed
}

func (env *testEnv) createAddress(userID uint, name string, isDefault bool) *models.Address {
	env.T.Helper()

	address := models.Address{
		UserID:     userID,
		Name:       name,
		Line1:      "221B Baker Street",
		City:       "London",
		State:      "Greater London",
		PostalCode: "NW1 6XE",
		Country:    "UK",
		IsDefault:  isDefault,
	}
	require.NoError(env.T, env.DB.Create(&address).Error)
	return &address
}

// seedCatalog creates the jewelry category, the crystal-elegance brand and
// one pendant product with a sale price.
func (env *testEnv) seedCatalog() *models.Product {
	env.T.Helper()

	category := models.Category{Name: "Jewelry", Slug: "jewelry"}
	require.NoError(env.T, env.DB.Create(&category).Error)

	brand := models.Brand{Name: "Crystal Elegance", Slug: "crystal-elegance"}
	require.NoError(env.T, env.DB.Create(&brand).Error)

	sale := 99.99
	product := models.Product{
		CategoryID: category.ID,
		BrandID:    brand.ID,
		Name:       "Crystal Pendant Necklace",
		Slug:       "crystal-pendant-necklace",
		Price:      129.99,
		SalePrice:  &sale,
		Images:     []string{"https://cdn.example.com/pendant.jpg"},
		Tags:       []string{"necklace", "crystal"},
		InStock:    true,
		Quantity:   10,
	}
	require.NoError(env.T, env.DB.Create(&product).Error)
	return &product
}

func itoa(id uint) string {
	return fmt.Sprint(id)
}
