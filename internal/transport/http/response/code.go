package response

import "net/http"

const StatusSuccess = "success"

// MsgByStatus 中间件直接中断请求时使用的默认文案
var MsgByStatus = map[int]string{
	http.StatusBadRequest:            "Bad Request",
	http.StatusUnauthorized:          "Unauthenticated.",
	http.StatusNotFound:              "Not Found",
	http.StatusRequestEntityTooLarge: "Request Entity Too Large",
	http.StatusUnprocessableEntity:   "The given data was invalid.",
	http.StatusInternalServerError:   "Server Error",
	http.StatusServiceUnavailable:    "Service Unavailable",
	http.StatusGatewayTimeout:        "Gateway Timeout",
}

func msgFor(status int) string {
	if m, ok := MsgByStatus[status]; ok {
		return m
	}
	return http.StatusText(status)
}
