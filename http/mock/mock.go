package mock

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/datarhei/foldwatch/encoding/json"
	"github.com/datarhei/foldwatch/http/errorhandler"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func DummyEcho() *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = errorhandler.HTTPErrorHandler
	router.Logger.SetOutput(io.Discard)

	return router
}

type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Raw     []byte
	Data    interface{}
}

func Request(t require.TestingT, httpstatus int, router http.Handler, method, path string, data io.Reader) *Response {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, data)
	if data != nil {
		req.Header.Add("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)

	response := CheckResponse(t, w.Result())

	require.Equal(t, httpstatus, w.Code, string(response.Raw))

	return response
}

func CheckResponse(t require.TestingT, res *http.Response) *Response {
	response := &Response{
		Code: res.StatusCode,
	}

	body, err := io.ReadAll(res.Body)
	require.Equal(t, nil, err)

	res.Body.Close()

	response.Raw = body

	if strings.Contains(res.Header.Get("Content-Type"), "application/json") {
		err := json.Unmarshal(body, &response.Data)
		require.Equal(t, nil, err)

		if response.Code != http.StatusOK {
			if data, ok := response.Data.(map[string]interface{}); ok {
				response.Message, _ = data["message"].(string)
			}
		}
	} else {
		response.Data = body
	}

	return response
}

// Decode unmarshals the raw body of the response into v.
func (r *Response) Decode(t require.TestingT, v interface{}) {
	err := json.Unmarshal(r.Raw, v)
	require.NoError(t, err)
}
