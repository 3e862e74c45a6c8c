package ecosystem

import (
	"slices"
	"testing"
)

func TestCsprojParser(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{
			name: "sdk style",
			data: `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
  <ItemGroup>
    <PackageReference Include="Newtonsoft.Json" Version="13.0.3" />
    <PackageReference Include="Serilog" Version="3.1.1" />
  </ItemGroup>
</Project>`,
			want: []string{"Newtonsoft.Json", "Serilog"},
		},
		{
			name: "separated item groups",
			data: `<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <PackageReference Include="Dapper" Version="2.1.28" />
  </ItemGroup>
  <PropertyGroup>
    <Nullable>enable</Nullable>
  </PropertyGroup>
  <ItemGroup Condition="'$(Configuration)' == 'Debug'">
    <PackageReference Include="Microsoft.Extensions.Logging" Version="8.0.0" />
  </ItemGroup>
  <Choose>
    <When Condition="'$(TargetFramework)' == 'net48'">
      <ItemGroup>
        <PackageReference Include="System.Memory" Version="4.5.5" />
      </ItemGroup>
    </When>
    <Otherwise>
      <ItemGroup>
        <PackageReference Update="Polly" Version="8.2.0" />
      </ItemGroup>
    </Otherwise>
  </Choose>
</Project>`,
			want: []string{"Dapper", "Microsoft.Extensions.Logging", "Polly", "System.Memory"},
		},
		{
			name: "no references",
			data: `<Project Sdk="Microsoft.NET.Sdk"><ItemGroup><Compile Include="a.cs" /></ItemGroup></Project>`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := CsprojParser{}.Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if m.Ecosystem() != NuGet {
				t.Errorf("Ecosystem = %v, want %v", m.Ecosystem(), NuGet)
			}
			if m.Type() != "csproj" {
				t.Errorf("Type = %q, want csproj", m.Type())
			}
			if got := depNames(m.FirstLevelDependencies()); !slices.Equal(got, tt.want) {
				t.Errorf("dependencies = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCsprojParserRejectsPackagesConfig(t *testing.T) {
	data := `<?xml version="1.0" encoding="utf-8"?><packages><package id="NUnit" version="3.13.3" /></packages>`
	if _, err := (CsprojParser{}).Parse([]byte(data)); err == nil {
		t.Error("expected error for packages.config content")
	}
}

func TestPackagesConfigParser(t *testing.T) {
	data := `<?xml version="1.0" encoding="utf-8"?>
<packages>
  <package id="NUnit" version="3.13.3" targetFramework="net48" />
  <package id="EntityFramework" version="6.4.4" targetFramework="net48" />
  <package id="NUnit" version="3.13.3" targetFramework="net472" />
</packages>`

	m, err := PackagesConfigParser{}.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Ecosystem() != NuGet {
		t.Errorf("Ecosystem = %v, want %v", m.Ecosystem(), NuGet)
	}
	want := []string{"EntityFramework", "NUnit"}
	if got := depNames(m.FirstLevelDependencies()); !slices.Equal(got, want) {
		t.Errorf("dependencies = %v, want %v", got, want)
	}
}
