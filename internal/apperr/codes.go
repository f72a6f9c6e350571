package apperr

const (
	CodeAuthMissing      = "AUTH_MISSING"
	CodeAuthWrongType    = "AUTH_WRONG_TYPE"
	CodeAuthTokenMissing = "AUTH_TOKEN_MISSING"
	CodeAuthTokenInvalid = "AUTH_TOKEN_INVALID"
	CodeForbidden        = "FORBIDDEN"

	CodeUnprocessableEntity = "UNPROCESSABLE_ENTITY"

	CodePasswordsNotSimilar      = "PASSWORDS_NOT_SIMILAR"
	CodeNameAlreadyUsed          = "NAME_ALREADY_USED"
	CodeEmailAlreadyUsed         = "EMAIL_ALREADY_USED"
	CodeEmailOrPasswordIncorrect = "EMAIL_OR_PASSWORD_INCORRECT"
	CodeTitleAlreadyExist        = "TITLE_ALREADY_EXIST"
	CodeContentAlreadyExist      = "CONTENT_ALREADY_EXIST"
	CodeAuthorNotFound           = "AUTHOR_NOT_FOUND"
	CodePostNotFound             = "POST_NOT_FOUND"
)

var (
	ErrAuthMissing      = Unauthorized(CodeAuthMissing, "Authorization header is missing")
	ErrAuthWrongType    = Unauthorized(CodeAuthWrongType, "Authorization scheme must be Bearer")
	ErrAuthTokenMissing = Unauthorized(CodeAuthTokenMissing, "Bearer token is missing")
	ErrAuthTokenInvalid = Unauthorized(CodeAuthTokenInvalid, "Bearer token is invalid")
	ErrForbidden        = Forbidden(CodeForbidden, "Admin role required")

	ErrPasswordsNotSimilar      = BadRequest(CodePasswordsNotSimilar, "Password and confirmation do not match")
	ErrNameAlreadyUsed          = BadRequest(CodeNameAlreadyUsed, "Name is already in use")
	ErrEmailAlreadyUsed         = BadRequest(CodeEmailAlreadyUsed, "Email is already in use")
	ErrEmailOrPasswordIncorrect = Unauthorized(CodeEmailOrPasswordIncorrect, "Email or password is incorrect")
	ErrTitleAlreadyExist        = BadRequest(CodeTitleAlreadyExist, "A post with this title already exists")
	ErrContentAlreadyExist      = BadRequest(CodeContentAlreadyExist, "A post with this content already exists")
	ErrAuthorNotFound           = BadRequest(CodeAuthorNotFound, "Author does not exist")
	ErrPostNotFound             = NotFound(CodePostNotFound, "Post not found")
)
