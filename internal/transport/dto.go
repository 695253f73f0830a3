package transport

type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role"     form:"role"`
}

type UserUpdateRequest struct {
	Username string `json:"username" form:"username"`
	Role     string `json:"role"     form:"role"`
	Password string `json:"password" form:"password"`
}

type CartAddRequest struct {
	ProductID string `json:"productId" form:"productId"`
}

type CartUpdateRequest struct {
	ProductID string `json:"productId" form:"productId"`
	Action    string `json:"action"    form:"action"`
}

type CartAddResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	CartCount int64  `json:"cartCount,omitempty"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Errors any    `json:"errors,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type DataResponse struct {
	Data any `json:"data"`
}
