package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/angagu/internal/models"
	"github.com/example/angagu/internal/utils"
)

func TestAdminApproval(t *testing.T) {
	env := newTestEnv(t)
	admin := models.Admin{Email: "admin@example.com", Name: "root", Password: hashed(t, "password1")}
	require.NoError(t, env.db.Create(&admin).Error)
	company := env.seedCompany(t, "seller@example.com", "01011112222", "password1")
	product := env.seedProduct(t, company.ID, false, 1)

	res := env.do(t, http.MethodPost, "/admin/login", map[string]string{"email": "admin@example.com", "password": "password1"}, nil)
	require.Equal(t, http.StatusOK, res.Code)
	var login struct {
		Token string `json:"token"`
	}
	res.decode(t, &login)
	auth := map[string]string{"Authorization": "Bearer " + login.Token}

	res = env.do(t, http.MethodGet, "/admin/approve", nil, bearer(t, company.ID, utils.PrincipalCompany))
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, 200, res.errCode(t))

	res = env.do(t, http.MethodGet, "/admin/approve", nil, auth)
	require.Equal(t, http.StatusOK, res.Code, res.Raw)
	var list struct {
		Items []models.Product `json:"items"`
		Total int64            `json:"total"`
	}
	res.decode(t, &list)
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, product.ID, list.Items[0].ID)

	res = env.do(t, http.MethodGet, "/customer/products", nil, nil)
	assert.NotContains(t, res.Raw, `"sofa"`)

	res = env.do(t, http.MethodPut, fmt.Sprintf("/admin/approve/%d", product.ID), nil, auth)
	require.Equal(t, http.StatusOK, res.Code, res.Raw)

	res = env.do(t, http.MethodPut, fmt.Sprintf("/admin/approve/%d", product.ID), nil, auth)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, 300, res.errCode(t))

	res = env.do(t, http.MethodGet, "/customer/products", nil, nil)
	assert.Contains(t, res.Raw, `"sofa"`)
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"title":"ANGAGU","version":"1.0"}`, res.Raw)
}
