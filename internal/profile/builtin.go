package profile

import "fjacquet/camt-xlsx/internal/xmlutils"

// Names of the built-in profiles.
const (
	NameCamt054     = "camt054"
	NameCamt054Flat = "camt054-flat"
	NameCamt053     = "camt053"
	NameCamt052     = "camt052"
)

// Builtins returns fresh, unvalidated copies of the built-in profiles in
// registration order.
func Builtins() []*ExtractionProfile {
	return []*ExtractionProfile{
		camt054(),
		camt054Flat(),
		statement(NameCamt053, xmlutils.MessageCamt053, "Bank to customer statement, one row per transaction"),
		statement(NameCamt052, xmlutils.MessageCamt052, "Bank to customer account report, one row per transaction"),
	}
}

// camt054 reads debit/credit notifications grouped by booking entry. The
// amount and debtor columns come from each TxDtls, the booking date and
// entry reference are inherited from the enclosing Ntry.
func camt054() *ExtractionProfile {
	return &ExtractionProfile{
		Name:            NameCamt054,
		Description:     "Debit/credit notification, one row per transaction, entry data inherited",
		Message:         xmlutils.MessageCamt054,
		EntryTag:        "Ntry",
		TransactionTag:  "TxDtls",
		DateFormat:      "DD.MM.YYYY",
		DefaultCurrency: "CHF",
		NotAvailable:    DefaultNotAvailable,
		Fields: []FieldSpec{
			{Column: "Buchungsdatum", Scope: ScopeEntry, Kind: KindDate, Paths: []string{"BookgDt/Dt", "BookgDt/DtTm"}},
			{Column: "Referenznummer", Scope: ScopeEntry, Kind: KindText, Paths: []string{"NtryRef"}},
			{Column: "Transaktionsbetrag", Scope: ScopeTransaction, Kind: KindAmount, Paths: []string{"Amt", "AmtDtls/TxAmt/Amt"}},
			{Column: "Debitor", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"//RltdPties//Dbtr//Nm"}},
			{Column: "Strasse", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"//RltdPties//Dbtr//PstlAdr/StrtNm"}},
			{Column: "Hausnummer", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"//RltdPties//Dbtr//PstlAdr/BldgNb"}},
			{Column: "Postleitzahl", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"//RltdPties//Dbtr//PstlAdr/PstCd"}},
			{Column: "Stadt", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"//RltdPties//Dbtr//PstlAdr/TwnNm"}},
			{Column: "Adresse", Scope: ScopeTransaction, Kind: KindList, Paths: []string{"//RltdPties//Dbtr//PstlAdr/AdrLine"}},
			{Column: "Zahlungsreferenz", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"//RmtInf//CdtrRefInf/Ref"}},
			{Column: "Zusätzliche Remittanzinformationen", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"//RmtInf//AddtlRmtInf", "//RmtInf/Ustrd"}},
		},
	}
}

// camt054Flat yields one row per notification, taking the first match of
// every column anywhere below it.
func camt054Flat() *ExtractionProfile {
	return &ExtractionProfile{
		Name:         NameCamt054Flat,
		Description:  "Debit/credit notification, one row per notification",
		Message:      xmlutils.MessageCamt054,
		EntryTag:     "Ntfctn",
		DateFormat:   "DD-MM-YYYY HH:MM:SS",
		NotAvailable: DefaultNotAvailable,
		Fields: []FieldSpec{
			{Column: "Zahlungsdatum", Scope: ScopeEntry, Kind: KindDate, Paths: []string{"//FrDtTm"}},
			{Column: "Betrag", Scope: ScopeEntry, Kind: KindText, Paths: []string{"//TxAmt//Amt"}},
			{Column: "Debitor Name", Scope: ScopeEntry, Kind: KindText, Paths: []string{"//Dbtr//Nm"}},
			{Column: "Straße", Scope: ScopeEntry, Kind: KindText, Paths: []string{"//Dbtr//PstlAdr//StrtNm"}},
			{Column: "Hausnummer", Scope: ScopeEntry, Kind: KindText, Paths: []string{"//Dbtr//PstlAdr//BldgNb"}},
			{Column: "Postleitzahl", Scope: ScopeEntry, Kind: KindText, Paths: []string{"//Dbtr//PstlAdr//PstCd"}},
			{Column: "Stadt", Scope: ScopeEntry, Kind: KindText, Paths: []string{"//Dbtr//PstlAdr//TwnNm"}},
			{Column: "Referenznummer", Scope: ScopeEntry, Kind: KindText, Paths: []string{"//NtryRef"}},
			{Column: "Zusätzliche Remittanzinformationen", Scope: ScopeEntry, Kind: KindText, Paths: []string{"//AddtlRmtInf"}},
			{Column: "Adresse", Scope: ScopeEntry, Kind: KindList, Paths: []string{"//Dbtr//PstlAdr//AdrLine"}},
		},
	}
}

// statement covers camt.053 and camt.052, which share the Ntry/TxDtls layout.
func statement(name, message, description string) *ExtractionProfile {
	return &ExtractionProfile{
		Name:           name,
		Description:    description,
		Message:        message,
		EntryTag:       "Ntry",
		TransactionTag: "TxDtls",
		DateFormat:     "DD.MM.YYYY",
		NotAvailable:   "not available",
		Fields: []FieldSpec{
			{Column: "Booking Date", Scope: ScopeEntry, Kind: KindDate, Paths: []string{"BookgDt/Dt", "BookgDt/DtTm"}},
			{Column: "Value Date", Scope: ScopeEntry, Kind: KindDate, Paths: []string{"ValDt/Dt", "ValDt/DtTm"}},
			{Column: "Entry Amount", Scope: ScopeEntry, Kind: KindAmount, Paths: []string{"Amt"}},
			{Column: "Credit/Debit", Scope: ScopeEntry, Kind: KindText, Paths: []string{"CdtDbtInd"}},
			{Column: "Bank Reference", Scope: ScopeEntry, Kind: KindText, Paths: []string{"AcctSvcrRef", "NtryRef"}},
			{Column: "Transaction Amount", Scope: ScopeTransaction, Kind: KindAmount, Paths: []string{"Amt", "AmtDtls/TxAmt/Amt"}},
			{Column: "Debtor", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"//RltdPties//Dbtr//Nm"}},
			{Column: "Creditor", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"//RltdPties//Cdtr//Nm"}},
			{Column: "IBAN", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"//RltdPties//DbtrAcct//IBAN", "//RltdPties//CdtrAcct//IBAN"}},
			{Column: "Reference", Scope: ScopeTransaction, Kind: KindText, Paths: []string{"Refs/EndToEndId", "Refs/TxId", "//RmtInf//CdtrRefInf/Ref"}},
			{Column: "Remittance Info", Scope: ScopeTransaction, Kind: KindList, Paths: []string{"RmtInf/Ustrd", "AddtlTxInf"}},
		},
	}
}
