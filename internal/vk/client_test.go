package vk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rom2555/VK-BOT/internal/domain"
)

// stubAPI fakes the VK method endpoint, recording the last request per method
func stubAPI(t *testing.T, responses map[string]string) (*Client, map[string]url.Values) {
	t.Helper()

	requests := make(map[string]url.Values)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[1:]
		requests[method] = r.URL.Query()

		body, ok := responses[method]
		if !ok {
			t.Errorf("unexpected method call %q", method)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return NewClientWithBaseURL("test-token", server.URL, zap.NewNop()), requests
}

func TestFindCities(t *testing.T) {
	client, requests := stubAPI(t, map[string]string{
		"database.getCities": `{"response":{"count":2,"items":[{"id":1,"title":"Москва"},{"id":2,"title":"Москва-1"}]}}`,
	})

	cities, err := client.FindCities(context.Background(), "москва")
	require.NoError(t, err)

	assert.Equal(t, []domain.City{
		{ID: 1, Title: "Москва"},
		{ID: 2, Title: "Москва-1"},
	}, cities)

	query := requests["database.getCities"]
	assert.Equal(t, "москва", query.Get("q"))
	assert.Equal(t, "1", query.Get("country_id"))
	assert.Equal(t, "test-token", query.Get("access_token"))
	assert.Equal(t, apiVersion, query.Get("v"))
}

func TestSearchProfilesFiltersClosed(t *testing.T) {
	client, requests := stubAPI(t, map[string]string{
		"users.search": `{"response":{"count":3,"items":[
			{"id":501,"first_name":"Анна","last_name":"Иванова","is_closed":false},
			{"id":502,"first_name":"Мария","last_name":"Петрова","is_closed":true,"can_access_closed":false},
			{"id":503,"first_name":"Ольга","last_name":"Сидорова","is_closed":true,"can_access_closed":true}
		]}}`,
	})

	profiles, err := client.SearchProfiles(context.Background(), domain.SearchRequest{
		AgeFrom: 20,
		AgeTo:   30,
		Sex:     domain.SexFemale,
		CityID:  1,
		Count:   10,
	})
	require.NoError(t, err)

	require.Len(t, profiles, 2)
	assert.Equal(t, int64(501), profiles[0].ID)
	assert.Equal(t, int64(503), profiles[1].ID)

	query := requests["users.search"]
	assert.Equal(t, "20", query.Get("age_from"))
	assert.Equal(t, "30", query.Get("age_to"))
	assert.Equal(t, "1", query.Get("sex"))
	assert.Equal(t, "1", query.Get("city"))
	assert.Equal(t, "1", query.Get("has_photo"))
	assert.Equal(t, "10", query.Get("count"))
}

func TestTopPhotosRankedByLikesAndComments(t *testing.T) {
	client, _ := stubAPI(t, map[string]string{
		"photos.get": `{"response":{"count":4,"items":[
			{"id":11,"likes":{"count":5},"comments":{"count":0}},
			{"id":12,"likes":{"count":20},"comments":{"count":1}},
			{"id":13,"likes":{"count":8},"comments":{"count":30}},
			{"id":14,"likes":{"count":2},"comments":{"count":2}}
		]}}`,
	})

	photos, err := client.TopPhotos(context.Background(), 501)
	require.NoError(t, err)

	assert.Equal(t, []string{"photo501_13", "photo501_12", "photo501_11"}, photos)
}

func TestAPIErrorSurfaces(t *testing.T) {
	client, _ := stubAPI(t, map[string]string{
		"database.getCities": `{"error":{"error_code":5,"error_msg":"User authorization failed"}}`,
	})

	_, err := client.FindCities(context.Background(), "москва")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User authorization failed")
}

func TestSendMessage(t *testing.T) {
	client, requests := stubAPI(t, map[string]string{
		"messages.send": `{"response":1}`,
	})

	err := client.SendMessage(context.Background(), 10, "Привет!", "photo1_2,photo1_3", `{"one_time":true}`)
	require.NoError(t, err)

	query := requests["messages.send"]
	assert.Equal(t, "10", query.Get("user_id"))
	assert.Equal(t, "Привет!", query.Get("message"))
	assert.Equal(t, "photo1_2,photo1_3", query.Get("attachment"))
	assert.NotEmpty(t, query.Get("random_id"))
	assert.NotEmpty(t, query.Get("keyboard"))
}
