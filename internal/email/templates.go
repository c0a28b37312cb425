package email

import (
	"html/template"
	"strings"
	"time"
)

// OrderEmailData — данные письма-подтверждения заказа.
type OrderEmailData struct {
	OrderID           int64
	TourTitle         string
	TourImageURL      string
	DateRange         string
	Days              int
	ParticipantsCount int
	TotalAmount       int64
	PrepaymentAmount  int64
	Currency          string
	TravelerName      string
}

var (
	orderTmpl = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:'Segoe UI',Tahoma,sans-serif;color:#333;padding:20px;">
  <div style="max-width:600px;margin:0 auto;background:#f8f9fa;border-radius:10px;padding:30px;">
    <div style="background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);color:#fff;padding:20px;border-radius:8px;text-align:center;">
      <h1>Покупка тура №{{.OrderID}}</h1>
    </div>
    <div style="background:#fff;padding:25px;border-radius:8px;margin-top:20px;">
      {{if .TourImageURL}}<img src="{{.TourImageURL}}" alt="{{.TourTitle}}" style="width:100%;border-radius:8px;">{{end}}
      <h2>{{.TourTitle}}</h2>
      <p><b>Даты:</b> {{.DateRange}} ({{.Days}} дн.)</p>
      <p><b>Участников:</b> {{.ParticipantsCount}}</p>
      <p><b>Итого:</b> {{.TotalAmount}} {{.Currency}}</p>
      <p><b>Предоплата:</b> {{.PrepaymentAmount}} {{.Currency}}</p>
      <p>Спасибо за бронирование, {{.TravelerName}}! Остаток оплачивается перед началом тура.</p>
    </div>
    <p style="margin-top:20px;text-align:center;color:#666;font-size:14px;">С уважением, команда KazWonder</p>
  </div>
</body>
</html>`))

	verifyTmpl = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:'Segoe UI',Tahoma,sans-serif;color:#333;padding:20px;">
  <div style="max-width:600px;margin:0 auto;background:#f8f9fa;border-radius:10px;padding:30px;">
    <h1>Подтверждение регистрации KazWonder</h1>
    <p>Здравствуйте{{if .Name}}, {{.Name}}{{end}}!</p>
    <p>Чтобы активировать аккаунт, перейдите по ссылке:</p>
    <p style="text-align:center;"><a href="{{.VerifyURL}}" style="display:inline-block;background:#667eea;color:#fff;padding:12px 30px;text-decoration:none;border-radius:5px;">Подтвердить email</a></p>
    <p style="color:#666;font-size:14px;">Ссылка действует 24 часа. Если вы не регистрировались, просто проигнорируйте это письмо.</p>
  </div>
</body>
</html>`))

	welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:'Segoe UI',Tahoma,sans-serif;color:#333;padding:20px;">
  <div style="max-width:600px;margin:0 auto;background:#f8f9fa;border-radius:10px;padding:30px;">
    <h1>Добро пожаловать в KazWonder!</h1>
    <p>Здравствуйте, {{.Name}}!</p>
    <p>Спасибо за подписку на эксклюзивные подборки туров по Казахстану. Вы будете получать лучшие маршруты, предложения и советы от местных экспертов.</p>
    <p style="color:#666;font-size:14px;">Если вы не подписывались, просто проигнорируйте это письмо.</p>
  </div>
</body>
</html>`))

	adminSubTmpl = template.Must(template.New("adminSub").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:'Segoe UI',Tahoma,sans-serif;color:#333;padding:20px;">
  <div style="max-width:600px;margin:0 auto;background:#f8f9fa;border-radius:10px;padding:30px;">
    <h1>Новая подписка на KazWonder</h1>
    <p><b>Имя:</b> {{.Name}}</p>
    <p><b>Email:</b> {{.Email}}</p>
    <p><b>Дата:</b> {{.At}}</p>
  </div>
</body>
</html>`))

	supportTmpl = template.Must(template.New("support").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:'Segoe UI',Tahoma,sans-serif;color:#333;padding:20px;">
  <div style="max-width:600px;margin:0 auto;background:#f8f9fa;border-radius:10px;padding:30px;">
    <h1>Новое сообщение в поддержку</h1>
    <p><b>Имя:</b> {{.Name}}</p>
    <p><b>Email:</b> {{.Email}}</p>
    {{if .Phone}}<p><b>Телефон:</b> {{.Phone}}</p>{{end}}
    {{if .RequestType}}<p><b>Тип обращения:</b> {{.RequestType}}</p>{{end}}
    <p><b>Сообщение:</b></p>
    <p>{{.Message}}</p>
  </div>
</body>
</html>`))
)

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func BuildOrderConfirmation(data OrderEmailData) (string, error) {
	return render(orderTmpl, data)
}

func BuildVerification(name, verifyURL string) (string, error) {
	return render(verifyTmpl, struct {
		Name      string
		VerifyURL string
	}{name, verifyURL})
}

func BuildWelcome(name string) (string, error) {
	return render(welcomeTmpl, struct{ Name string }{name})
}

func BuildAdminSubscribe(name, emailAddr string, at time.Time) (string, error) {
	return render(adminSubTmpl, struct {
		Name  string
		Email string
		At    string
	}{name, emailAddr, at.Format("02.01.2006 15:04")})
}

func BuildSupport(name, emailAddr, phone, requestType, message string) (string, error) {
	return render(supportTmpl, struct {
		Name        string
		Email       string
		Phone       string
		RequestType string
		Message     string
	}{name, emailAddr, phone, requestType, message})
}
