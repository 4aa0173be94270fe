package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/services"
)

func newStaffTestRouter(auth0ID string) *gin.Engine {
	router := gin.New()
	authed := router.Group("/api/v1", func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Next()
	})
	authed.POST("/staff", CreateStaffProfile)
	authed.GET("/staff/me", GetMyProfile)
	return router
}

func TestCreateStaffProfile(t *testing.T) {
	db := setupControllerTest(t)
	services.SetAuth0Service(nil)
	seedStaff(t, db, "Priya", models.RoleAdmin)
	router := newStaffTestRouter("auth0|kumar")

	w := performJSON(t, router, http.MethodPost, "/api/v1/staff",
		gin.H{"name": "Kumar", "email": "kumar@priyas.example"})
	require.Equal(t, http.StatusCreated, w.Code)

	var staff models.Staff
	require.NoError(t, db.Where("auth0_id = ?", "auth0|kumar").First(&staff).Error)
	assert.Equal(t, models.RoleIntake, staff.Role, "self-registration defaults to intake")
}

func TestCreateStaffProfileBootstrapAdmin(t *testing.T) {
	db := setupControllerTest(t)
	services.SetAuth0Service(nil)
	router := newStaffTestRouter("auth0|priya")

	// The first profile may claim a role; later ones may not
	w := performJSON(t, router, http.MethodPost, "/api/v1/staff",
		gin.H{"name": "Priya", "email": "priya@priyas.example", "role": models.RoleAdmin})
	require.Equal(t, http.StatusCreated, w.Code)

	var staff models.Staff
	require.NoError(t, db.Where("auth0_id = ?", "auth0|priya").First(&staff).Error)
	assert.Equal(t, models.RoleAdmin, staff.Role)

	second := newStaffTestRouter("auth0|kumar")
	w = performJSON(t, second, http.MethodPost, "/api/v1/staff",
		gin.H{"name": "Kumar", "email": "kumar@priyas.example", "role": models.RoleAdmin})
	require.Equal(t, http.StatusCreated, w.Code)
	var kumar models.Staff
	require.NoError(t, db.Where("auth0_id = ?", "auth0|kumar").First(&kumar).Error)
	assert.Equal(t, models.RoleIntake, kumar.Role)
}

func TestCreateStaffProfileConflict(t *testing.T) {
	db := setupControllerTest(t)
	services.SetAuth0Service(nil)
	staff := seedStaff(t, db, "Kumar", models.RoleStitching)
	router := newStaffTestRouter(staff.Auth0ID)

	w := performJSON(t, router, http.MethodPost, "/api/v1/staff",
		gin.H{"name": "Kumar", "email": "kumar@priyas.example"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateStaffProfileFillsFromUserinfo(t *testing.T) {
	db := setupControllerTest(t)

	userinfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"auth0|kumar","email":"kumar@priyas.example","name":"Kumar"}`))
	}))
	defer userinfo.Close()

	services.SetAuth0Service(services.NewAuth0Service(&config.Config{Auth0Domain: userinfo.URL}))
	defer services.SetAuth0Service(nil)

	router := newStaffTestRouter("auth0|kumar")
	w := performJSON(t, router, http.MethodPost, "/api/v1/staff", gin.H{})
	require.Equal(t, http.StatusCreated, w.Code)

	var staff models.Staff
	require.NoError(t, db.Where("auth0_id = ?", "auth0|kumar").First(&staff).Error)
	assert.Equal(t, "Kumar", staff.Name)
	assert.Equal(t, "kumar@priyas.example", staff.Email)
}

func TestCreateStaffProfileMissingIdentity(t *testing.T) {
	setupControllerTest(t)
	services.SetAuth0Service(nil)
	router := newStaffTestRouter("auth0|kumar")

	// No name/email in the body and no userinfo service to fall back to
	w := performJSON(t, router, http.MethodPost, "/api/v1/staff", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMyProfile(t *testing.T) {
	db := setupControllerTest(t)
	staff := seedStaff(t, db, "Kumar", models.RoleStitching)
	router := newStaffTestRouter(staff.Auth0ID)

	w := performJSON(t, router, http.MethodGet, "/api/v1/staff/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Kumar", data["name"])

	missing := newStaffTestRouter("auth0|nobody")
	w = performJSON(t, missing, http.MethodGet, "/api/v1/staff/me", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
