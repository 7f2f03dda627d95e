package services

import (
	"bytes"
	"strings"
	"testing"

	"dispatch_crm_go/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseLeadSpreadsheet_CSVAliases(t *testing.T) {
	csvData := "\ufeffLegal Name,MC #,USDOT Number,Telephone,E-mail,Physical Address,Power Units\n" +
		"Lone Star Freight,MC123,456,(214) 555-0100,ops@lonestar.test,\"100 Main St, Dallas, TX 75001\",12\n" +
		",,,,,,\n" +
		"Prairie Haul,MC999,,312-555-0001,,\"9 Elm, Chicago, il. 60601-1234\",3 trucks\n"

	got, err := ParseLeadSpreadsheet(strings.NewReader(csvData), "carriers.csv")
	require.NoError(t, err)

	want := []LeadInput{
		{
			CompanyName: "Lone Star Freight", MCNumber: "MC123", DOTNumber: "456",
			PhoneNumber: "(214) 555-0100", Email: "ops@lonestar.test", State: "TX",
			Address: "100 Main St, Dallas, TX 75001", TruckCount: 12,
		},
		{
			CompanyName: "Prairie Haul", MCNumber: "MC999", PhoneNumber: "312-555-0001",
			State: "IL", Address: "9 Elm, Chicago, il. 60601-1234", TruckCount: 3,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseLeadSpreadsheet mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLeadSpreadsheet_HeaderBelowTitleRows(t *testing.T) {
	csvData := "FMCSA export,,\n" +
		"generated 2024-03-09,,\n" +
		"Carrier Name,Phone,State\n" +
		"Alpha Haulers,3125550001,ok\n"

	got, err := ParseLeadSpreadsheet(strings.NewReader(csvData), "export.csv")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha Haulers", got[0].CompanyName)
	assert.Equal(t, "OK", got[0].State)
}

func TestParseLeadSpreadsheet_PositionalFallback(t *testing.T) {
	csvData := "col1,col2,col3,col4,col5,col6\n" +
		"Alpha Haulers,MC111,3125550001,a@alpha.test,tx,7\n" +
		"Bravo Transport,MC222,3125550002,,,n/a\n"

	got, err := ParseLeadSpreadsheet(strings.NewReader(csvData), "list.csv")
	require.NoError(t, err)

	want := []LeadInput{
		{CompanyName: "Alpha Haulers", MCNumber: "MC111", PhoneNumber: "3125550001", Email: "a@alpha.test", State: "TX", TruckCount: 7},
		{CompanyName: "Bravo Transport", MCNumber: "MC222", PhoneNumber: "3125550002"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positional parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLeadSpreadsheet_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Company", "Phone Number", "Truck Count"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Gulf Coast Carriers", "7135550100", 9}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := ParseLeadSpreadsheet(buf, "Leads.XLSX")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, LeadInput{CompanyName: "Gulf Coast Carriers", PhoneNumber: "7135550100", TruckCount: 9}, got[0])
}

func TestParseLeadSpreadsheet_Unsupported(t *testing.T) {
	_, err := ParseLeadSpreadsheet(strings.NewReader("x"), "leads.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestDeriveStateFromAddress(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"100 Main St, Dallas, TX 75001", "TX"},
		{"9 Elm, Chicago, il. 60601-1234", "IL"},
		{"PO Box 1, Reno, NV 89501  ", "NV"},
		{"100 Main St, Dallas, Texas 75001", ""},
		{"100 Main St, Dallas TX", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStateFromAddress(tt.address))
		})
	}
}

func TestParseTruckCount(t *testing.T) {
	tests := map[string]int{
		"12":                   12,
		"12.0":                 12,
		" 4 trucks":            4,
		"":                     0,
		"n/a":                  0,
		"-3":                   0,
		"many":                 0,
		"1e30":                 0,
		"NaN":                  0,
		"+Inf":                 0,
		"99999999999999999999": 0,
		"3e2 units":            300,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseTruckCount(in), in)
	}
}

func TestGenerateLeadImportTemplate_RoundTrips(t *testing.T) {
	buf, err := GenerateLeadImportTemplate()
	require.NoError(t, err)

	got, err := ParseLeadSpreadsheet(bytes.NewReader(buf.Bytes()), "template.xlsx")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Example Trucking LLC", got[0].CompanyName)
	assert.Equal(t, "TX", got[0].State)
	assert.Equal(t, 5, got[0].TruckCount)
}

func TestImportLeadsFromFile(t *testing.T) {
	db := setupTestDB(t)
	csvData := "Company Name,Phone Number\nAlpha Haulers,3125550001\nBravo Transport,3125550002\n"

	result, err := ImportLeadsFromFile(db, strings.NewReader(csvData), "leads.csv", "March FMCSA")
	require.NoError(t, err)
	assert.Equal(t, &LeadImportResult{Source: "March FMCSA", Parsed: 2, Imported: 2}, result)

	sources, err := ListLeadSources(db)
	require.NoError(t, err)
	assert.Equal(t, []LeadSourceSummary{{Source: "March FMCSA", Count: 2}}, sources)

	_, err = ImportLeadsFromFile(db, strings.NewReader(csvData), "leads.csv", "")
	assert.ErrorIs(t, err, ErrEmptySourceLabel)
}

func TestExportLeadsXLSX(t *testing.T) {
	db := setupTestDB(t)
	createTestLead(t, db, "Lone Star Freight", "2145550100")
	lead := createTestLead(t, db, "Prairie Haul", "3125550001")
	_, err := UpdateLeadStatus(db, lead.ID, models.LeadStatusInterested, "")
	require.NoError(t, err)

	leads, err := ListLeads(db)
	require.NoError(t, err)

	buf, err := ExportLeadsXLSX(leads)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Serial", rows[0][0])
	assert.Equal(t, "Prairie Haul", rows[1][1])
	assert.Equal(t, "INTERESTED", rows[1][9])
	assert.NotEmpty(t, rows[1][10])
}
