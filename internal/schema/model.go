// Package schema names the fixed columns of the loan-application and state
// reference datasets. Column names are the normalized (snake_case) forms.
package schema

// IssueDateLayout parses issue dates such as "5 March 2019".
const IssueDateLayout = "2 January 2006"

// Primary dataset columns.
const (
	CustomerID         = "customer_id"
	EmpTitle           = "emp_title"
	EmpLength          = "emp_length"
	HomeOwnership      = "home_ownership"
	AnnualInc          = "annual_inc"
	AnnualIncJoint     = "annual_inc_joint"
	VerificationStatus = "verification_status"
	ZipCode            = "zip_code"
	AddrState          = "addr_state"
	AvgCurBal          = "avg_cur_bal"
	TotCurBal          = "tot_cur_bal"
	LoanID             = "loan_id"
	LoanStatus         = "loan_status"
	LoanAmount         = "loan_amount"
	State              = "state"
	FundedAmount       = "funded_amount"
	Term               = "term"
	IntRate            = "int_rate"
	Grade              = "grade"
	IssueDate          = "issue_date"
	PymntPlan          = "pymnt_plan"
	Type               = "type"
	Purpose            = "purpose"
	Description        = "description"
)

// Derived columns.
const (
	MonthNumber        = "month_number"
	SalaryCover        = "salary_cover"
	MonthlyInstallment = "monthly_installment"
	LetterGrade        = "letter_grade"
)

// Reference dataset columns.
const (
	// StateCode is the raw key column of the reference file; it is renamed
	// to State before the join.
	StateCode = "code"
)

// NumericColumns are coerced to float64 when the primary file is read. A
// non-numeric value in one of them fails the extraction.
var NumericColumns = []string{
	AnnualInc,
	AnnualIncJoint,
	AvgCurBal,
	TotCurBal,
	LoanAmount,
	FundedAmount,
	IntRate,
	Grade,
}

// TextColumns are kept as strings even when every value looks numeric.
var TextColumns = []string{
	CustomerID,
	EmpTitle,
	EmpLength,
	HomeOwnership,
	VerificationStatus,
	ZipCode,
	AddrState,
	LoanID,
	LoanStatus,
	State,
	Term,
	IssueDate,
	PymntPlan,
	Type,
	Purpose,
	Description,
}

// NormalizedColumns are min-max scaled by the encoding stage.
var NormalizedColumns = []string{
	AnnualInc,
	AnnualIncJoint,
	LoanAmount,
	IntRate,
	AvgCurBal,
	TotCurBal,
	MonthlyInstallment,
}

// EncodedColumns are label encoded by the encoding stage.
var EncodedColumns = []string{
	HomeOwnership,
	VerificationStatus,
	AddrState,
	Purpose,
	Term,
	Type,
	LoanStatus,
}
