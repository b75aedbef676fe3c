package headers

// Cabeçalhos injetados pelo api-gateway depois de autenticar a sessão.
// Serviços internos confiam neles; o gateway sempre descarta os valores vindos do cliente.
const (
	UserID    = "X-User-ID"
	UserAdmin = "X-User-Admin"
)
