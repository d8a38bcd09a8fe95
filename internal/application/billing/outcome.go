package billing

// OutcomeStatus resultado de una operación que puede completarse parcialmente.
type OutcomeStatus string

const (
	OutcomeOK       OutcomeStatus = "ok"
	OutcomeDegraded OutcomeStatus = "degraded"
	OutcomeFailed   OutcomeStatus = "failed"
)

// Razones de degradación reportadas al cliente (sin detalle interno).
const (
	ReasonExchangeNotRendered  = "xml_no_generado"
	ReasonExchangeNotStored    = "xml_no_guardado"
	ReasonPrintableNotRendered = "pdf_no_generado"
	ReasonPrintableNotStored   = "pdf_no_guardado"
	ReasonInvoiceNotStored     = "factura_no_guardada"
	ReasonDocumentsNotStored   = "documentos_no_guardados"
	ReasonSubmissionNotQueued  = "envio_dian_no_encolado"
)

// Outcome acumula el estado de un flujo: Ok mientras no haya razones, Degraded con razones.
type Outcome struct {
	Status  OutcomeStatus
	Reasons []string
}

// Degrade marca el resultado como parcial. No rebaja un Failed.
func (o *Outcome) Degrade(reason string) {
	if o.Status != OutcomeFailed {
		o.Status = OutcomeDegraded
	}
	o.Reasons = append(o.Reasons, reason)
}

// Fail marca el resultado como fallido.
func (o *Outcome) Fail(reason string) {
	o.Status = OutcomeFailed
	o.Reasons = append(o.Reasons, reason)
}

// OK indica que todo se completó.
func (o Outcome) OK() bool { return o.Status == OutcomeOK }
