package notification

import (
	"html/template"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

var statusLabels = map[domain.OrderStatus]string{
	domain.OrderStatusPending:    "en attente",
	domain.OrderStatusProcessing: "en préparation",
	domain.OrderStatusShipped:    "expédiée",
	domain.OrderStatusDelivered:  "livrée",
	domain.OrderStatusCancelled:  "annulée",
}

func statusLabel(s domain.OrderStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

type statusView struct {
	domain.OrderStatusChangedEvent
}

func (v statusView) Label() string { return statusLabel(v.To) }

const layoutHead = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #c2185b; color: white; padding: 20px; text-align: center; }
        .content { padding: 30px; background-color: #fdf6f8; }
        table { width: 100%; border-collapse: collapse; }
        td, th { padding: 6px; border-bottom: 1px solid #eee; text-align: left; }
    </style>
</head>
<body>
<div class="container">
`

const layoutFoot = `</div>
</body>
</html>
`

var orderPlacedTemplate = template.Must(template.New("order_placed").Parse(layoutHead + `
    <div class="header"><h1>Merci pour votre commande</h1></div>
    <div class="content">
        <p>Bonjour {{.CustomerName}},</p>
        <p>Votre commande <strong>#{{.OrderID}}</strong> a bien été enregistrée.</p>
        <table>
            <tr><th>Produit</th><th>Quantité</th><th>Prix unitaire</th></tr>
            {{range .Lines}}<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice.StringFixed 2}} €</td></tr>
            {{end}}
        </table>
        <p>Total : <strong>{{.Total.StringFixed 2}} €</strong></p>
    </div>
` + layoutFoot))

var statusChangedTemplate = template.Must(template.New("order_status_changed").Parse(layoutHead + `
    <div class="header"><h1>Suivi de commande</h1></div>
    <div class="content">
        <p>Bonjour {{.CustomerName}},</p>
        <p>Votre commande <strong>#{{.OrderID}}</strong> est désormais {{.Label}}.</p>
    </div>
` + layoutFoot))

var contactTemplate = template.Must(template.New("contact").Parse(layoutHead + `
    <div class="header"><h1>Nouveau message de contact</h1></div>
    <div class="content">
        <p>De : {{.Email}}</p>
        <p>Sujet : {{.Subject}}</p>
        <p>{{.Message}}</p>
    </div>
` + layoutFoot))
