package draft

import (
	"fmt"
	"strings"
)

type blueprint struct {
	title   string
	opening string
	items   []string
}

const closing = "Ensure the output is valid markdown and does not require importing any external libraries. Leave placeholders for unknown values, represented with underlines."

var willSections = []string{
	"Declaration: State the testator's intent.",
	"Assets and Beneficiaries: Specify who inherits what.",
	"Executor Appointment: Designate a trusted executor.",
	"Special Clauses: Add relevant conditions for the type of will.",
	"Signatures and Witnesses: Ensure compliance with legal requirements.",
}

var signatureAndNotary = "Signature and Notary: Provide space for the affiant's signature and a notary's acknowledgment."

var blueprints = map[TemplateKind]map[string]blueprint{
	Contract: {
		"NDA": {
			title:   "a comprehensive Non-Disclosure Agreement (NDA)",
			opening: "Include essential clauses such as:",
			items: []string{
				"Confidential Information: Define the scope of confidentiality.",
				"Exclusions from Confidentiality: Outline what is not covered.",
				"Obligations of the Receiving Party: Specify the responsibilities of the party receiving the information.",
				"Term and Termination: Define the duration of the agreement.",
				"Breach and Remedies: Include consequences for breaches.",
				"Governing Law: Specify the legal jurisdiction.",
			},
		},
		"Employment": {
			title:   "a legally sound Employment Agreement",
			opening: "Include key clauses such as:",
			items: []string{
				"Position and Job Title: Specify the employee's role.",
				"Compensation: Outline salary, bonuses and benefits.",
				"Duties and Responsibilities: Clearly define expectations.",
				"Confidentiality and Non-Compete: Protect employer information.",
				"Termination Conditions: Describe notice period and grounds for termination.",
				"Governing Law: Specify applicable laws.",
			},
		},
		"Sales": {
			title:   "a detailed Sales Agreement",
			opening: "Ensure the inclusion of:",
			items: []string{
				"Description of Goods/Services: Define the items being sold.",
				"Payment Terms: Outline payment schedules and methods.",
				"Delivery Details: Specify timelines and shipping terms.",
				"Risk of Loss: State when responsibility transfers.",
				"Warranties and Representations: Define guarantees and disclaimers.",
				"Governing Law: Specify the jurisdiction.",
			},
		},
	},
	Agreement: {
		"Partnership": {
			title:   "a detailed Partnership Agreement",
			opening: "Ensure the agreement includes:",
			items: []string{
				"Partnership Purpose: State the reason for the partnership.",
				"Capital Contributions: Detail contributions of each partner.",
				"Profit and Loss Distribution: Define the sharing ratios.",
				"Management and Decision-Making: Explain governance procedures.",
				"Withdrawal and Dissolution: Include exit strategies and dissolution terms.",
				"Dispute Resolution: Specify arbitration or mediation methods.",
				"Governing Law: Reference relevant legal statutes.",
			},
		},
		"Service": {
			title:   "a clear and concise Service Agreement",
			opening: "Include clauses such as:",
			items: []string{
				"Scope of Services: Clearly define the services to be provided.",
				"Compensation: Specify payment terms and amounts.",
				"Term and Termination: Define the agreement duration.",
				"Confidentiality: Protect sensitive information.",
				"Liability and Indemnification: Outline responsibilities and limitations.",
				"Governing Law: Specify applicable jurisdiction.",
			},
		},
		"Lease": {
			title:   "a detailed Lease Agreement",
			opening: "Include key elements such as:",
			items: []string{
				"Lease Term: Define the duration of the lease.",
				"Rent Payment: Specify the amount, due dates and penalties.",
				"Security Deposit: Outline the terms for deposits.",
				"Responsibilities: Clarify maintenance and repair obligations.",
				"Termination Conditions: State grounds for early termination.",
				"Governing Law: Specify the jurisdiction.",
			},
		},
	},
	Will: {
		"Unprivileged": {
			title:   "a legally compliant Unprivileged Will",
			opening: "Include sections such as:",
			items: []string{
				willSections[0], willSections[1], willSections[2], willSections[4],
			},
		},
		"Privileged":  {title: "a legally compliant Privileged Will", opening: "Include sections such as:", items: willSections},
		"Conditional": {title: "a legally compliant Conditional Will", opening: "Include sections such as:", items: willSections},
		"Joint":       {title: "a legally compliant Joint Will", opening: "Include sections such as:", items: willSections},
		"Mutual":      {title: "a legally compliant Mutual Will", opening: "Include sections such as:", items: willSections},
	},
	Affidavit: {
		"General": {
			title:   "a General Affidavit",
			opening: "Include sections such as:",
			items: []string{
				"Affiant's Details: Name, address and identification of the affiant.",
				"Statement of Facts: A clear and concise statement of the facts being affirmed.",
				"Sworn Declaration: A statement affirming the truthfulness of the information provided.",
				signatureAndNotary,
			},
		},
		"Financial": {
			title:   "a Financial Affidavit",
			opening: "Include sections such as:",
			items: []string{
				"Affiant's Financial Information: Income, assets, liabilities and expenses.",
				"Statement of Assets: List the affiant's personal and business assets.",
				"Statement of Liabilities: Outline any liabilities or debts.",
				"Statement of Income: Include income details such as salary or business income.",
				"Certification: Statement confirming that the information provided is true and accurate.",
			},
		},
		"Identity": {
			title:   "an Affidavit of Identity",
			opening: "Include sections such as:",
			items: []string{
				"Affiant's Identity: Full name, date of birth and identifying documents.",
				"Statement of Identification: Affirm the identity of the affiant.",
				"Verification by Third Party: If applicable, include a statement from a witness verifying the identity.",
				signatureAndNotary,
			},
		},
		"Residence": {
			title:   "an Affidavit of Residence",
			opening: "Include sections such as:",
			items: []string{
				"Affiant's Details: Name, address and identification of the affiant.",
				"Statement of Residence: Declare the current residence and list supporting evidence such as utility bills.",
				"Witness Statement: If required, include a statement from a witness affirming the residence.",
				signatureAndNotary,
			},
		},
		"Marriage": {
			title:   "an Affidavit of Marriage",
			opening: "Include sections such as:",
			items: []string{
				"Affiant's Details: Full name, date of birth and identification of the affiant.",
				"Marriage Details: Provide the date and place of the marriage.",
				"Affiant's Statement: Affirm the marital status of the affiant.",
				"Supporting Documents: List any supporting documents such as the marriage certificate.",
				signatureAndNotary,
			},
		},
		"NameChange": {
			title:   "an Affidavit of Name Change",
			opening: "Include sections such as:",
			items: []string{
				"Affiant's Details: Full name, date of birth and identification of the affiant.",
				"Previous Name: State the previous name of the affiant.",
				"New Name: State the new name of the affiant.",
				"Reason for Name Change: Describe the reason for the name change.",
				signatureAndNotary,
			},
		},
	},
}

// ComposeInstruction builds the generation instruction for a validated request.
func ComposeInstruction(req Request) string {
	if bp, ok := blueprints[req.Template][req.Subtype]; ok {
		var b strings.Builder
		fmt.Fprintf(&b, "Draft %s in markdown format based on the following details: %s. Do not import any external libraries.\n\n", bp.title, req.Prompt)
		b.WriteString(bp.opening)
		b.WriteByte('\n')
		for i, item := range bp.items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item)
		}
		b.WriteByte('\n')
		b.WriteString(closing)
		return b.String()
	}
	return genericInstruction(req)
}

func genericInstruction(req Request) string {
	var subject, parts string
	switch req.Template {
	case Contract:
		subject, parts = "a legal contract template for a "+req.Subtype, "clauses"
	case Agreement:
		subject, parts = "a legal agreement template for a "+req.Subtype, "clauses"
	case Will:
		subject, parts = "a "+req.Subtype+" Will", "sections"
	case Affidavit:
		subject, parts = "an affidavit for a "+req.Subtype, "sections"
	default:
		subject, parts = "a legal document template for "+string(req.Template), "sections"
	}
	return fmt.Sprintf("Draft %s in markdown format based on the following details: %s. Include all relevant %s and leave unknown values blank with underlines. Ensure the output is valid markdown and does not require importing any external libraries.", subject, req.Prompt, parts)
}
