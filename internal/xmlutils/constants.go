// Package xmlutils identifies ISO 20022 cash-management messages and offers
// small XPath helpers used by the inspect command and the batch processor.
package xmlutils

// Message types recognised by DetectMessage.
const (
	MessageCamt052 = "camt.052"
	MessageCamt053 = "camt.053"
	MessageCamt054 = "camt.054"
)

// messageGroups maps the message type to the XPath of its group element
// (the single child of Document).
var messageGroups = []struct {
	message string
	xpath   string
	entries string
}{
	{MessageCamt052, "/Document/BkToCstmrAcctRpt", "/Document/BkToCstmrAcctRpt/Rpt/Ntry"},
	{MessageCamt053, "/Document/BkToCstmrStmt", "/Document/BkToCstmrStmt/Stmt/Ntry"},
	{MessageCamt054, "/Document/BkToCstmrDbtCdtNtfctn", "/Document/BkToCstmrDbtCdtNtfctn/Ntfctn/Ntry"},
}

// Common XPath expressions evaluated by Inspect.
const (
	XPathMessageID    = "/Document/*/GrpHdr/MsgId"
	XPathCreationTime = "/Document/*/GrpHdr/CreDtTm"
	XPathIBAN         = "/Document/*/*/Acct/Id/IBAN"
	XPathTxDetails    = "/Document/*/*/Ntry/NtryDtls/TxDtls"
)
